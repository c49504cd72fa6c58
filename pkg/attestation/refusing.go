package attestation

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// RefusingClient always refuses. It exists for deployments that
// disable a risk tier's attestation requirement at the DVAP layer
// itself rather than in the manifest, and for tests exercising
// DVAP_REFUSED paths.
type RefusingClient struct {
	Reason string
}

func (r *RefusingClient) Attest(ctx context.Context, frame *contracts.CanonicalActionFrame) (contracts.AttestationResult, error) {
	reason := r.Reason
	if reason == "" {
		reason = "ATTESTATION_UNAVAILABLE"
	}
	return contracts.AttestationResult{
		Verdict: contracts.AttestationRefused,
		Reason:  reason,
	}, nil
}
