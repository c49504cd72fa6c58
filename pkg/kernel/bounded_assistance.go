package kernel

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// boundedAssistanceOnFailure implements §4.6: a private helper invoked
// only after a federation failure in GovernedFederationCall. At most
// one assistance call per failed operation at the kernel layer; any
// collaborator panic or error is swallowed and reported as {ok: false}
// rather than propagated, so a broken assistance broker can never turn
// a federation failure into a kernel-level crash.
//
// manifest.assistance.max_attempts is advisory metadata exposed to
// callers elsewhere; this helper does not loop regardless of its
// value.
func (k *Kernel) boundedAssistanceOnFailure(ctx context.Context, traceID, operationContext string, riskTier contracts.RiskTier) (result contracts.AssistanceResponse) {
	defer func() {
		if r := recover(); r != nil {
			result = contracts.AssistanceResponse{OK: false, Error: "ASSISTANCE_PANIC"}
		}
	}()

	resp, err := k.assistance.RequestAssistance(ctx, contracts.AssistanceRequest{
		TraceID:  traceID,
		AgentID:  k.agentID,
		Query:    "federation call failed: " + operationContext,
		RiskTier: riskTier,
	})
	if err != nil {
		return contracts.AssistanceResponse{OK: false, Error: err.Error()}
	}
	return resp
}
