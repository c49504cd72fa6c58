package governance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

func testFrame() *contracts.CanonicalActionFrame {
	return &contracts.CanonicalActionFrame{
		ActionID:             "act_1",
		AgentID:              "agent_1",
		RiskTier:             contracts.RiskTierStandard,
		SDCVersion:           "sdc-2026.1",
		PolicyVerdict:        true,
		ConstraintsSatisfied: true,
		HumanConfirmation:    false,
		TimestampUTC:         "2026-08-03T00:00:00Z",
		HashAlgorithm:        contracts.HashAlgorithm,
	}
}

func TestCELGate_AllowsWhenInvariantsSatisfied(t *testing.T) {
	gate, err := NewCELGate([]InvariantRule{
		{Key: "CONSTRAINTS_OK", Expression: "frame.constraints_satisfied"},
	})
	require.NoError(t, err)

	decision, err := gate.Evaluate(context.Background(), testFrame(), []string{"CONSTRAINTS_OK"})
	require.NoError(t, err)
	assert.Equal(t, contracts.GovernanceAllow, decision.Verdict)
}

func TestCELGate_DeniesMissingInvariant(t *testing.T) {
	gate, err := NewCELGate(nil)
	require.NoError(t, err)

	decision, err := gate.Evaluate(context.Background(), testFrame(), []string{"UNREGISTERED"})
	require.NoError(t, err)
	assert.Equal(t, contracts.GovernanceDeny, decision.Verdict)
	assert.Equal(t, "INVARIANT_KEY_MISSING", decision.Reason)
}

func TestCELGate_DeniesWhenExpressionFalse(t *testing.T) {
	gate, err := NewCELGate([]InvariantRule{
		{Key: "HUMAN_CONFIRMED", Expression: "frame.human_confirmation"},
	})
	require.NoError(t, err)

	decision, err := gate.Evaluate(context.Background(), testFrame(), []string{"HUMAN_CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, contracts.GovernanceDeny, decision.Verdict)
	assert.Equal(t, "INVARIANT_HUMAN_CONFIRMED_FAILED", decision.Reason)
}

func TestCELGate_PolicyHashStable(t *testing.T) {
	rules := []InvariantRule{{Key: "A", Expression: "true"}}
	g1, err := NewCELGate(rules)
	require.NoError(t, err)
	g2, err := NewCELGate(rules)
	require.NoError(t, err)
	assert.Equal(t, g1.PolicyHash(), g2.PolicyHash())
}
