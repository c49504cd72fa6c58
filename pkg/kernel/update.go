package kernel

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/applier"
	"github.com/Mindburn-Labs/fck/pkg/canonicalize"
	"github.com/Mindburn-Labs/fck/pkg/contracts"
	"github.com/Mindburn-Labs/fck/pkg/signing"
)

// ApplyUpdatePackage implements §4.5: verify, govern, and (when the
// risk tier demands it) attest a data-only update package before
// handing it to an externally injected applier. The kernel never
// interprets payload_b64 itself; verify and apply are both injected so
// the signature algorithm and the update's domain semantics stay
// outside the kernel's trust boundary.
func (k *Kernel) ApplyUpdatePackage(ctx context.Context, pkg *contracts.UpdatePackage, verify signing.Verifier, apply applier.BundleApplier, riskTier contracts.RiskTier) UpdateResult {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state == nil {
		return UpdateResult{OK: false, Error: "kernel has not booted"}
	}
	manifest := k.state.Manifest

	if !manifest.Updates.Enabled {
		return UpdateResult{OK: false, Error: TagUpdatesDisabled}
	}
	if !manifest.Updates.AllowsChannel(pkg.Channel) {
		return UpdateResult{OK: false, Error: TagUpdateChannelNotAllowed}
	}

	if manifest.Updates.RequireSignature {
		valid, err := verify(ctx, pkg, manifest.Updates.TrustedSigners)
		if err != nil || !valid {
			k.recordAudit("UPDATE_INVALID_SIGNATURE", pkg.PackageID, pkg.SignerID)
			return UpdateResult{OK: false, Error: TagInvalidSignature}
		}
	}

	ext := contracts.NewFrameExtensions().
		WithString("channel", string(pkg.Channel)).
		WithString("version", pkg.Version).
		WithString("signer", pkg.SignerID)
	frame := buildFrame("update_"+pkg.PackageID, k.agentID, riskTier, manifest.Governance.SDCVersion, k.clock.Now(), ext)

	decision, err := k.governance.Evaluate(ctx, frame, manifest.Governance.InvariantKeysRequired)
	if err != nil {
		k.recordAudit("GOVERNANCE_ERROR", pkg.PackageID, err.Error())
		return UpdateResult{OK: false, Error: withSubreason(TagGovDeny, "GOVERNANCE_ERROR")}
	}
	if decision.Verdict == contracts.GovernanceDeny {
		k.recordAudit("GOVERNANCE_DENY", pkg.PackageID, decision.Reason)
		return UpdateResult{OK: false, Error: withSubreason(TagGovDeny, decision.Reason)}
	}

	inputFrameHash, err := canonicalize.CanonicalHash(frame)
	if err != nil {
		return UpdateResult{OK: false, Error: withSubreason(TagGovDeny, "FRAME_HASH_ERROR")}
	}

	var uvaHash string
	if riskTier.In(manifest.Updates.RequireDVAPForRiskTiers) {
		attResult, err := k.attestation.Attest(ctx, frame)
		if err != nil || attResult.Verdict != contracts.AttestationAttested {
			reason := attResult.Reason
			if err != nil {
				reason = "ATTESTATION_ERROR"
			}
			k.recordAudit("ATTESTATION_REFUSED", pkg.PackageID, reason)
			return UpdateResult{
				OK:             false,
				Error:          withSubreason(TagDVAPRefused, reason),
				InputFrameHash: inputFrameHash,
			}
		}
		uvaHash = attResult.UVAHash
		k.recordAudit("ATTESTATION_ATTESTED", pkg.PackageID, uvaHash)
	}

	if err := apply(ctx, pkg); err != nil {
		k.recordAudit("UPDATE_APPLY_FAILED", pkg.PackageID, err.Error())
		return UpdateResult{
			OK:             false,
			Error:          "APPLY_FAILED:" + err.Error(),
			InputFrameHash: inputFrameHash,
			UVAHash:        uvaHash,
		}
	}

	newManifestHash, err := canonicalize.CanonicalHash(manifest)
	if err != nil {
		return UpdateResult{OK: false, Error: "MANIFEST_HASH_ERROR", InputFrameHash: inputFrameHash, UVAHash: uvaHash}
	}

	updated := cloneState(k.state)
	updated.LastManifestHash = newManifestHash
	if err := k.persist(ctx, updated); err != nil {
		k.recordAudit("UPDATE_PERSIST_FAILED", pkg.PackageID, err.Error())
		return UpdateResult{OK: false, Error: "PERSIST_FAILED", InputFrameHash: inputFrameHash, UVAHash: uvaHash}
	}
	k.state = updated

	k.recordAudit("UPDATE_APPLIED", pkg.PackageID, pkg.Version)
	return UpdateResult{
		OK:               true,
		InputFrameHash:   inputFrameHash,
		UVAHash:          uvaHash,
		LastManifestHash: newManifestHash,
	}
}
