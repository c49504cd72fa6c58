// Package attestation implements the verification-authority collaborator
// contract: given a governance-approved frame, return ATTESTED or
// REFUSED plus an opaque verified-action hash.
package attestation

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// Client is the attestation collaborator contract. It may only be
// invoked after a governance ALLOW; the kernel never calls it otherwise.
type Client interface {
	Attest(ctx context.Context, frame *contracts.CanonicalActionFrame) (contracts.AttestationResult, error)
}
