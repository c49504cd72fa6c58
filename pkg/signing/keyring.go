package signing

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// KeyRing holds the public keys of known update signers, keyed by the
// signer fingerprint recorded in manifest.updates.trusted_signers and
// in UpdatePackage.SignerID.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

func NewKeyRing() *KeyRing {
	return &KeyRing{keys: make(map[string]ed25519.PublicKey)}
}

// Register adds or replaces the public key for signerID.
func (k *KeyRing) Register(signerID string, pubKey ed25519.PublicKey) *KeyRing {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[signerID] = pubKey
	return k
}

// Revoke removes signerID's key, making any future signature from that
// signer unverifiable.
func (k *KeyRing) Revoke(signerID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.keys, signerID)
}

// Ed25519Verifier returns a Verifier that checks pkg.SignatureB64 against
// pkg.SignerID's registered public key, provided SignerID appears in
// trustedSigners. The signed message is the raw payload bytes, not the
// base64 encoding of them.
func (k *KeyRing) Ed25519Verifier() Verifier {
	return func(ctx context.Context, pkg *contracts.UpdatePackage, trustedSigners []string) (bool, error) {
		if pkg.SignerID == "" || pkg.SignatureB64 == "" {
			return false, nil
		}
		if !contains(trustedSigners, pkg.SignerID) {
			return false, nil
		}

		k.mu.RLock()
		pubKey, ok := k.keys[pkg.SignerID]
		k.mu.RUnlock()
		if !ok {
			return false, nil
		}

		payload, err := base64.StdEncoding.DecodeString(pkg.PayloadB64)
		if err != nil {
			return false, fmt.Errorf("signing: decoding payload: %w", err)
		}
		sig, err := base64.StdEncoding.DecodeString(pkg.SignatureB64)
		if err != nil {
			return false, fmt.Errorf("signing: decoding signature: %w", err)
		}

		return ed25519.Verify(pubKey, payload, sig), nil
	}
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
