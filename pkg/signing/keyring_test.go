package signing

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

func TestEd25519Verifier_ValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ring := NewKeyRing().Register("signer-1", pub)
	payload := []byte(`{"skill":"v1"}`)
	sig := ed25519.Sign(priv, payload)

	pkg := &contracts.UpdatePackage{
		PackageID:    "pkg_1",
		SignerID:     "signer-1",
		PayloadB64:   base64.StdEncoding.EncodeToString(payload),
		SignatureB64: base64.StdEncoding.EncodeToString(sig),
	}

	verify := ring.Ed25519Verifier()
	ok, err := verify(context.Background(), pkg, []string{"signer-1"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEd25519Verifier_UntrustedSigner(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	ring := NewKeyRing().Register("signer-1", pub)

	payload := []byte("data")
	sig := ed25519.Sign(priv, payload)
	pkg := &contracts.UpdatePackage{
		SignerID:     "signer-1",
		PayloadB64:   base64.StdEncoding.EncodeToString(payload),
		SignatureB64: base64.StdEncoding.EncodeToString(sig),
	}

	verify := ring.Ed25519Verifier()
	ok, err := verify(context.Background(), pkg, []string{"someone-else"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEd25519Verifier_TamperedPayload(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	ring := NewKeyRing().Register("signer-1", pub)

	sig := ed25519.Sign(priv, []byte("original"))
	pkg := &contracts.UpdatePackage{
		SignerID:     "signer-1",
		PayloadB64:   base64.StdEncoding.EncodeToString([]byte("tampered")),
		SignatureB64: base64.StdEncoding.EncodeToString(sig),
	}

	verify := ring.Ed25519Verifier()
	ok, err := verify(context.Background(), pkg, []string{"signer-1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEd25519Verifier_RevokedKey(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	ring := NewKeyRing().Register("signer-1", pub)
	ring.Revoke("signer-1")

	sig := ed25519.Sign(priv, []byte("data"))
	pkg := &contracts.UpdatePackage{
		SignerID:     "signer-1",
		PayloadB64:   base64.StdEncoding.EncodeToString([]byte("data")),
		SignatureB64: base64.StdEncoding.EncodeToString(sig),
	}

	verify := ring.Ed25519Verifier()
	ok, err := verify(context.Background(), pkg, []string{"signer-1"})
	require.NoError(t, err)
	assert.False(t, ok)
}
