package kernel

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/canonicalize"
	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// RequestAssistance implements §4.4: an explicit request for help by
// the agent, not triggered by a failure. It runs the same five-phase
// pipeline as GovernedFederationCall, but the effect is
// assistance.request_assistance. The frame's action_id is derived
// deterministically from trace_id and query, making assistance frames
// content-addressed.
func (k *Kernel) RequestAssistance(ctx context.Context, traceID, query string, riskTier contracts.RiskTier) AssistResult {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state == nil {
		return AssistResult{OK: false, Error: "kernel has not booted"}
	}
	manifest := k.state.Manifest

	if !manifest.Assistance.Enabled {
		return AssistResult{OK: false, Error: TagAssistanceDisabled}
	}

	actionID := assistanceActionID(traceID, query)
	ext := contracts.NewFrameExtensions().WithString("trace_id", traceID).WithString("query", query)
	frame := buildFrame(actionID, k.agentID, riskTier, manifest.Governance.SDCVersion, k.clock.Now(), ext)

	decision, err := k.governance.Evaluate(ctx, frame, manifest.Governance.InvariantKeysRequired)
	if err != nil {
		k.recordAudit("GOVERNANCE_ERROR", actionID, err.Error())
		return AssistResult{OK: false, Error: withSubreason(TagGovDeny, "GOVERNANCE_ERROR")}
	}
	if decision.Verdict == contracts.GovernanceDeny {
		k.recordAudit("GOVERNANCE_DENY", actionID, decision.Reason)
		return AssistResult{OK: false, Error: withSubreason(TagGovDeny, decision.Reason)}
	}

	inputFrameHash, err := canonicalize.CanonicalHash(frame)
	if err != nil {
		return AssistResult{OK: false, Error: withSubreason(TagGovDeny, "FRAME_HASH_ERROR")}
	}

	var uvaHash string
	if riskTier.In(manifest.Governance.DVAPRequiredForRiskTiers) {
		attResult, err := k.attestation.Attest(ctx, frame)
		if err != nil || attResult.Verdict != contracts.AttestationAttested {
			reason := attResult.Reason
			if err != nil {
				reason = "ATTESTATION_ERROR"
			}
			k.recordAudit("ATTESTATION_REFUSED", actionID, reason)
			return AssistResult{
				OK:             false,
				Error:          withSubreason(TagDVAPRefused, reason),
				InputFrameHash: inputFrameHash,
			}
		}
		uvaHash = attResult.UVAHash
		k.recordAudit("ATTESTATION_ATTESTED", actionID, uvaHash)
	}

	resp, err := k.assistance.RequestAssistance(ctx, contracts.AssistanceRequest{
		TraceID:  traceID,
		AgentID:  k.agentID,
		Query:    query,
		RiskTier: riskTier,
	})
	if err != nil {
		resp = contracts.AssistanceResponse{OK: false, Error: err.Error()}
	}

	if !resp.OK {
		k.recordAudit("ASSISTANCE_REQUEST_FAILED", actionID, resp.Error)
		return AssistResult{
			OK:             false,
			Error:          resp.Error,
			InputFrameHash: inputFrameHash,
			UVAHash:        uvaHash,
		}
	}

	k.recordAudit("ASSISTANCE_REQUEST_OK", actionID, string(resp.RouteUsed))
	return AssistResult{
		OK:             true,
		Response:       resp.Response,
		InputFrameHash: inputFrameHash,
		UVAHash:        uvaHash,
		RouteUsed:      resp.RouteUsed,
	}
}
