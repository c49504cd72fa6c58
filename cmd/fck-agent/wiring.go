package main

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"github.com/Mindburn-Labs/fck/pkg/applier"
	"github.com/Mindburn-Labs/fck/pkg/assistance"
	"github.com/Mindburn-Labs/fck/pkg/attestation"
	"github.com/Mindburn-Labs/fck/pkg/config"
	"github.com/Mindburn-Labs/fck/pkg/contracts"
	"github.com/Mindburn-Labs/fck/pkg/federation"
	"github.com/Mindburn-Labs/fck/pkg/governance"
	"github.com/Mindburn-Labs/fck/pkg/schema"
	"github.com/Mindburn-Labs/fck/pkg/signing"
	"github.com/Mindburn-Labs/fck/pkg/storage"
)

// defaultInvariantRules is the CEL rule set every fck-agent deployment
// starts with: require that the frame's own constraints_satisfied flag
// is set. Operators wire richer policy by constructing their own
// governance.CELGate; this is the floor, not the ceiling.
var defaultInvariantRules = []governance.InvariantRule{
	{Key: "no_pii_exfil", Expression: "frame.constraints_satisfied == true"},
}

func buildStorage(cfg *config.Config) (storage.Adapter, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		return storage.NewMemoryAdapter(), nil
	case config.StorageBackendRedis:
		return storage.NewRedisAdapter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case config.StorageBackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("wiring: opening postgres: %w", err)
		}
		return storage.NewPostgresAdapter(db), nil
	default:
		return nil, fmt.Errorf("wiring: unrecognized storage backend %q", cfg.StorageBackend)
	}
}

func buildGate() (governance.Gate, error) {
	return governance.NewCELGate(defaultInvariantRules)
}

// authorityKeyPath is where fck-agent persists its attestation
// authority's ed25519 key pair across invocations. Each CLI process is
// short-lived, so losing the key on every run would make uva_hash
// values unverifiable from one call to the next.
const authorityKeyPath = ".fck/authority.key"

func buildAttestor() (attestation.Client, error) {
	priv, err := loadOrGenerateAuthorityKey()
	if err != nil {
		return nil, err
	}
	return attestation.NewEd25519Attestor("fck-agent-authority", priv), nil
}

func loadOrGenerateAuthorityKey() (ed25519.PrivateKey, error) {
	if raw, err := os.ReadFile(authorityKeyPath); err == nil {
		if len(raw) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("wiring: %s has wrong length for an ed25519 key", authorityKeyPath)
		}
		return ed25519.PrivateKey(raw), nil
	}

	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("wiring: generating authority key: %w", err)
	}
	if err := os.MkdirAll(".fck", 0o700); err == nil {
		_ = os.WriteFile(authorityKeyPath, priv, 0o600)
	}
	return priv, nil
}

func buildFederationClient(cfg *config.Config) federation.Client {
	return federation.NewHTTPClient(cfg.FederationEndpoint, rate.Limit(5), 10)
}

func buildAssistanceBroker(fed federation.Client) assistance.Broker {
	router := assistance.NewRouter()
	router.Register(contracts.AssistanceRouteFederation, assistance.NewFederationRouteHandler(fed, "assist"))
	escalation := assistance.NewHumanEscalationHandler([]string{"on-call"}, 1, 15*time.Minute)
	router.Register(contracts.AssistanceRouteHumanEscalation, escalation)
	return router
}

func buildUpdateRegistry(ctx context.Context, store applier.ManifestStore, validator *schema.ManifestValidator) (*applier.Registry, func(context.Context) error, error) {
	registry := applier.NewRegistry()
	configApplier := applier.NewConfigApplier(store, validator)
	registry.Register(contracts.UpdateChannelConfigBundle, configApplier.Apply)

	wasmApplier, err := applier.NewWASMApplier(ctx, applier.WASMSandboxConfig{
		MemoryLimitBytes: 64 * 1024 * 1024,
		CPUTimeLimit:     5 * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wiring: starting wasm applier: %w", err)
	}
	registry.Register(contracts.UpdateChannelSkillCapsule, wasmApplier.Apply)

	return registry, wasmApplier.Close, nil
}

// trustedKeysPath points at a JSON file mapping signer_id to a base64
// ed25519 public key. fck-agent refuses every signature until an
// operator populates it.
const trustedKeysPath = ".fck/trusted_signers.json"

func buildVerifier() (signing.Verifier, error) {
	ring := signing.NewKeyRing()

	raw, err := os.ReadFile(trustedKeysPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ring.Ed25519Verifier(), nil
		}
		return nil, fmt.Errorf("wiring: reading %s: %w", trustedKeysPath, err)
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("wiring: parsing %s: %w", trustedKeysPath, err)
	}
	for signerID, b64Key := range entries {
		pub, err := decodeEd25519PublicKey(b64Key)
		if err != nil {
			return nil, fmt.Errorf("wiring: decoding key for signer %q: %w", signerID, err)
		}
		ring.Register(signerID, pub)
	}
	return ring.Ed25519Verifier(), nil
}

func decodeEd25519PublicKey(b64Key string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(b64Key)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("key has wrong length for an ed25519 public key")
	}
	return ed25519.PublicKey(raw), nil
}

// fileManifestStore is a one-file-per-agent ManifestStore backing the
// CLI's CONFIG_BUNDLE applier. It's a CLI convenience, not a kernel
// component — the kernel itself never reads manifest.json directly.
type fileManifestStore struct {
	path string
	mu   sync.Mutex
}

func newFileManifestStore(path string) *fileManifestStore {
	return &fileManifestStore{path: path}
}

func (s *fileManifestStore) CurrentManifestDoc() (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("manifest store: reading %s: %w", s.path, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("manifest store: parsing %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *fileManifestStore) ReplaceManifestDoc(doc map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest store: encoding updated manifest: %w", err)
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// loadManifest reads a manifest document from path, validates it
// strictly against pkg/schema, and decodes it into a typed
// contracts.CapabilityManifest. Both steps run on every boot, not just
// the first one, so a hand-edited manifest.json can never smuggle an
// unknown field past the kernel.
func loadManifest(path string, validator *schema.ManifestValidator) (contracts.CapabilityManifest, error) {
	var manifest contracts.CapabilityManifest

	raw, err := os.ReadFile(path)
	if err != nil {
		return manifest, fmt.Errorf("loading manifest %s: %w", path, err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return manifest, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if err := validator.Validate(doc); err != nil {
		return manifest, err
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return manifest, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	return manifest, nil
}
