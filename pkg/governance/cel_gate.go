package governance

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/Mindburn-Labs/fck/pkg/canonicalize"
	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// InvariantRule binds one of a manifest's invariant_keys_required
// entries to a CEL expression evaluated against the frame. A key with
// no bound rule is treated as unsatisfiable — an operator must
// register a rule for every invariant it intends to require.
type InvariantRule struct {
	Key        string
	Expression string
}

// CELGate compiles and evaluates CEL expressions against a frame to
// decide ALLOW/DENY. Compiled programs are cached so repeated
// evaluations of the same invariant don't pay compile cost twice.
type CELGate struct {
	env    *cel.Env
	mu     sync.RWMutex
	cache  map[string]cel.Program
	rules  map[string]string
	hash   string
}

// NewCELGate builds a gate from a set of invariant rules. The gate's
// policy hash (see PolicyHash) is the canonical hash of rules, an opaque
// identifier for this rule set surfaced in every decision so callers can
// correlate which policy version produced it.
func NewCELGate(rules []InvariantRule) (*CELGate, error) {
	env, err := cel.NewEnv(
		cel.Variable("frame", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("governance: cel env: %w", err)
	}

	ruleMap := make(map[string]string, len(rules))
	for _, r := range rules {
		ruleMap[r.Key] = r.Expression
	}

	policyHash, err := canonicalize.CanonicalHash(rules)
	if err != nil {
		return nil, fmt.Errorf("governance: hashing rule set: %w", err)
	}

	return &CELGate{
		env:   env,
		cache: make(map[string]cel.Program),
		rules: ruleMap,
		hash:  policyHash,
	}, nil
}

// PolicyHash returns the opaque identifier for this gate's rule set.
func (g *CELGate) PolicyHash() string {
	return g.hash
}

func (g *CELGate) Evaluate(ctx context.Context, frame *contracts.CanonicalActionFrame, requiredInvariants []string) (contracts.GovernanceDecision, error) {
	frameMap, err := frameToMap(frame)
	if err != nil {
		return contracts.GovernanceDecision{}, fmt.Errorf("governance: marshaling frame: %w", err)
	}

	for _, key := range requiredInvariants {
		expr, ok := g.rules[key]
		if !ok {
			return contracts.GovernanceDecision{
				Verdict:    contracts.GovernanceDeny,
				Reason:     "INVARIANT_KEY_MISSING",
				PolicyHash: g.hash,
			}, nil
		}

		satisfied, err := g.evaluate(expr, frameMap)
		if err != nil {
			return contracts.GovernanceDecision{}, fmt.Errorf("governance: evaluating invariant %q: %w", key, err)
		}
		if !satisfied {
			return contracts.GovernanceDecision{
				Verdict:    contracts.GovernanceDeny,
				Reason:     "INVARIANT_" + key + "_FAILED",
				PolicyHash: g.hash,
			}, nil
		}
	}

	return contracts.GovernanceDecision{
		Verdict:    contracts.GovernanceAllow,
		Reason:     "OK",
		PolicyHash: g.hash,
	}, nil
}

func (g *CELGate) evaluate(expression string, frameMap map[string]interface{}) (bool, error) {
	g.mu.RLock()
	prg, hit := g.cache[expression]
	g.mu.RUnlock()

	if !hit {
		g.mu.Lock()
		if prg, hit = g.cache[expression]; !hit {
			ast, issues := g.env.Compile(expression)
			if issues != nil && issues.Err() != nil {
				g.mu.Unlock()
				return false, fmt.Errorf("compile error: %w", issues.Err())
			}
			p, err := g.env.Program(ast)
			if err != nil {
				g.mu.Unlock()
				return false, fmt.Errorf("program error: %w", err)
			}
			g.cache[expression] = p
			prg = p
		}
		g.mu.Unlock()
	}

	out, _, err := prg.Eval(map[string]interface{}{"frame": frameMap})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean")
	}
	return allowed, nil
}

func frameToMap(frame *contracts.CanonicalActionFrame) (map[string]interface{}, error) {
	m := map[string]interface{}{
		"action_id":             frame.ActionID,
		"agent_id":              frame.AgentID,
		"risk_tier":             string(frame.RiskTier),
		"sdc_version":           frame.SDCVersion,
		"policy_verdict":        frame.PolicyVerdict,
		"constraints_satisfied": frame.ConstraintsSatisfied,
		"human_confirmation":    frame.HumanConfirmation,
		"timestamp_utc":         frame.TimestampUTC,
	}
	for k, v := range frame.Extensions {
		m[k] = v
	}
	return m, nil
}
