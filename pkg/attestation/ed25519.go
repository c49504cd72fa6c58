package attestation

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/google/uuid"

	"github.com/Mindburn-Labs/fck/pkg/canonicalize"
	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// Ed25519Attestor attests frames by signing their canonical hash with a
// fixed verification-authority key. A real deployment would route this
// through a hardware-backed signer or a remote DVAP service; this
// implementation keeps the contract local and deterministic for tests
// and single-process deployments.
type Ed25519Attestor struct {
	authorityID string
	privateKey  ed25519.PrivateKey
}

// NewEd25519Attestor builds an attestor that signs with privateKey,
// tagging every attestation with authorityID.
func NewEd25519Attestor(authorityID string, privateKey ed25519.PrivateKey) *Ed25519Attestor {
	return &Ed25519Attestor{authorityID: authorityID, privateKey: privateKey}
}

func (a *Ed25519Attestor) Attest(ctx context.Context, frame *contracts.CanonicalActionFrame) (contracts.AttestationResult, error) {
	select {
	case <-ctx.Done():
		return contracts.AttestationResult{}, ctx.Err()
	default:
	}

	frameHash, err := canonicalize.CanonicalHash(frame)
	if err != nil {
		return contracts.AttestationResult{}, fmt.Errorf("attestation: hashing frame: %w", err)
	}

	sig := ed25519.Sign(a.privateKey, []byte(frameHash))

	uvaHash, err := canonicalize.CanonicalHash(map[string]interface{}{
		"attestation_id": uuid.NewSHA1(uuid.Nil, append([]byte(frameHash), sig...)).String(),
		"authority_id":   a.authorityID,
		"frame_hash":     frameHash,
	})
	if err != nil {
		return contracts.AttestationResult{}, fmt.Errorf("attestation: hashing uva: %w", err)
	}

	return contracts.AttestationResult{
		Verdict: contracts.AttestationAttested,
		UVAHash: uvaHash,
	}, nil
}
