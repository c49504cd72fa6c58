package kernel

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/canonicalize"
	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// GovernedFederationCall implements §4.3: execute a remote operation
// under the agent's risk tier, gated by governance and, when the risk
// tier demands it, attestation. A federation failure triggers at most
// one bounded assistance attempt (§4.6); assistance success augments
// the error tag but never masks the original failure as a success.
func (k *Kernel) GovernedFederationCall(ctx context.Context, operation string, payload map[string]interface{}, riskTier contracts.RiskTier) CallResult {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state == nil {
		return CallResult{OK: false, Error: "kernel has not booted"}
	}
	manifest := k.state.Manifest

	if !manifest.Federation.Enabled {
		return CallResult{OK: false, Error: TagFederationDisabled}
	}
	if !manifest.Federation.AllowsOperation(operation) {
		return CallResult{OK: false, Error: TagOpNotAllowed}
	}

	ext := contracts.NewFrameExtensions().WithString("operation", operation)
	frame := buildFrame("call_"+operation+"_"+k.clock.Now().UTC().Format("20060102T150405.000000000"), k.agentID, riskTier, manifest.Governance.SDCVersion, k.clock.Now(), ext)

	decision, err := k.governance.Evaluate(ctx, frame, manifest.Governance.InvariantKeysRequired)
	if err != nil {
		k.recordAudit("GOVERNANCE_ERROR", operation, err.Error())
		return CallResult{OK: false, Error: withSubreason(TagGovDeny, "GOVERNANCE_ERROR")}
	}
	if decision.Verdict == contracts.GovernanceDeny {
		k.recordAudit("GOVERNANCE_DENY", operation, decision.Reason)
		return CallResult{OK: false, Error: withSubreason(TagGovDeny, decision.Reason)}
	}

	inputFrameHash, err := canonicalize.CanonicalHash(frame)
	if err != nil {
		return CallResult{OK: false, Error: withSubreason(TagGovDeny, "FRAME_HASH_ERROR")}
	}

	var uvaHash string
	if riskTier.In(manifest.Governance.DVAPRequiredForRiskTiers) {
		attResult, err := k.attestation.Attest(ctx, frame)
		if err != nil || attResult.Verdict != contracts.AttestationAttested {
			reason := attResult.Reason
			if err != nil {
				reason = "ATTESTATION_ERROR"
			}
			k.recordAudit("ATTESTATION_REFUSED", operation, reason)
			return CallResult{
				OK:             false,
				Error:          withSubreason(TagDVAPRefused, reason),
				InputFrameHash: inputFrameHash,
			}
		}
		uvaHash = attResult.UVAHash
		k.recordAudit("ATTESTATION_ATTESTED", operation, uvaHash)
	}

	resp, err := k.federation.Request(ctx, contracts.FederationRequest{
		TraceID:   frame.ActionID,
		AgentID:   k.agentID,
		Operation: operation,
		Payload:   payload,
		RiskTier:  riskTier,
	})
	if err != nil {
		resp = contracts.FederationResponse{OK: false, Error: err.Error()}
	}

	if resp.OK {
		k.recordAudit("FEDERATION_CALL_OK", operation, resp.Source)
		return CallResult{
			OK:             true,
			Result:         resp.Result,
			InputFrameHash: inputFrameHash,
			UVAHash:        uvaHash,
			Source:         resp.Source,
		}
	}

	k.recordAudit("FEDERATION_CALL_FAILED", operation, resp.Error)

	errorTag := withSubreason(TagFederationError, resp.Error)
	if manifest.Assistance.Enabled {
		assistResp := k.boundedAssistanceOnFailure(ctx, frame.ActionID, operation, riskTier)
		if assistResp.OK {
			errorTag = errorTag + " | assist:" + string(assistResp.RouteUsed)
			k.recordAudit("ASSISTANCE_RECOVERED", operation, string(assistResp.RouteUsed))
		}
	}

	return CallResult{
		OK:             false,
		Error:          errorTag,
		InputFrameHash: inputFrameHash,
	}
}
