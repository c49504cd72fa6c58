// Package kernel implements the Federated Capability Kernel: a
// per-agent, policy-gated execution core mediating every outbound
// action a satellite agent performs against a federation. See the
// package's governed entrypoints: Boot, GetManifest,
// GovernedFederationCall, RequestAssistance, ApplyUpdatePackage.
package kernel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Mindburn-Labs/fck/pkg/attestation"
	"github.com/Mindburn-Labs/fck/pkg/audit"
	"github.com/Mindburn-Labs/fck/pkg/canonicalize"
	"github.com/Mindburn-Labs/fck/pkg/contracts"
	"github.com/Mindburn-Labs/fck/pkg/federation"
	"github.com/Mindburn-Labs/fck/pkg/governance"
	"github.com/Mindburn-Labs/fck/pkg/storage"

	"github.com/Mindburn-Labs/fck/pkg/assistance"
)

// Clock abstracts time.Now so boot and frame timestamps are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Kernel is a single stateful object parameterized by an agent_id and
// wired to its collaborator capabilities. One Kernel instance serves
// exactly one agent; state mutation within that agent is linearized by
// mu, per §5's single-owner, cooperatively-scheduled model.
type Kernel struct {
	agentID     string
	storage     storage.Adapter
	governance  governance.Gate
	attestation attestation.Client
	federation  federation.Client
	assistance  assistance.Broker
	clock       Clock
	logger      *slog.Logger
	auditLog    *audit.Log

	mu    sync.Mutex
	state *contracts.PersistedKernelState
}

// Option configures optional Kernel fields at construction time.
type Option func(*Kernel)

func WithClock(c Clock) Option {
	return func(k *Kernel) { k.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) { k.logger = l }
}

// WithAuditLog injects a pre-existing audit log, e.g. one shared across
// kernel restarts or flushed to durable storage by the caller. Without
// this option New starts a fresh in-memory log.
func WithAuditLog(l *audit.Log) Option {
	return func(k *Kernel) { k.auditLog = l }
}

// New builds a Kernel for agentID, wired to its collaborators. storage,
// gate, attestor, fed, and broker must all be non-nil; a kernel with no
// opinion about one of its collaborators should still receive an
// implementation that deterministically refuses (e.g.
// attestation.RefusingClient) rather than nil.
func New(agentID string, storageAdapter storage.Adapter, gate governance.Gate, attestor attestation.Client, fed federation.Client, broker assistance.Broker, opts ...Option) *Kernel {
	k := &Kernel{
		agentID:     agentID,
		storage:     storageAdapter,
		governance:  gate,
		attestation: attestor,
		federation:  fed,
		assistance:  broker,
		clock:       wallClock{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.auditLog == nil {
		k.auditLog = audit.NewLog(k.clock)
	}
	return k
}

// AuditLog returns the kernel's hash-chained decision log, so an
// operator can persist it or call VerifyChain independently of any
// single governed call.
func (k *Kernel) AuditLog() *audit.Log {
	return k.auditLog
}

// recordAudit appends a decision-trail entry. Audit append failures are
// logged but never turned into a governed-entrypoint error: the ten-tag
// error lexicon in errors.go is reserved for the pipeline's own gating
// outcomes, not for a secondary bookkeeping failure.
func (k *Kernel) recordAudit(action, target, details string) {
	if k.auditLog == nil {
		return
	}
	if _, err := k.auditLog.Append(k.agentID, action, target, details); err != nil {
		k.logger.Error("audit log append failed", "action", action, "target", target, "error", err)
	}
}

// Boot implements §4.2. On first boot it initializes state with
// monotonic_counter = 1; on subsequent boots it recomputes
// last_manifest_hash, bumps last_boot_utc, and strictly increments
// monotonic_counter. AGENT_ID_MISMATCH is fatal and leaves state
// untouched.
func (k *Kernel) Boot(ctx context.Context, defaultManifest contracts.CapabilityManifest) (*contracts.PersistedKernelState, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	key := contracts.StorageKey(k.agentID)
	raw, found, err := k.storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("kernel: boot: reading state: %w", err)
	}

	if !found {
		manifestHash, err := canonicalize.CanonicalHash(defaultManifest)
		if err != nil {
			return nil, fmt.Errorf("kernel: boot: hashing default manifest: %w", err)
		}

		state := &contracts.PersistedKernelState{
			Manifest:         defaultManifest,
			LastBootUTC:      k.clock.Now().UTC().Format(time.RFC3339),
			LastManifestHash: manifestHash,
			MonotonicCounter: 1,
		}
		if err := k.persist(ctx, state); err != nil {
			return nil, err
		}
		k.state = state
		k.logger.InfoContext(ctx, "kernel booted (first boot)", "agent_id", k.agentID, "monotonic_counter", state.MonotonicCounter)
		k.recordAudit("KERNEL_BOOT_FIRST", k.agentID, fmt.Sprintf("monotonic_counter=%d", state.MonotonicCounter))
		return cloneState(state), nil
	}

	loaded, err := unmarshalState(raw)
	if err != nil {
		return nil, fmt.Errorf("kernel: boot: parsing persisted state: %w", err)
	}

	if loaded.Manifest.AgentID != k.agentID {
		k.recordAudit("KERNEL_BOOT_AGENT_ID_MISMATCH", k.agentID, "got="+loaded.Manifest.AgentID)
		return nil, &ErrAgentIDMismatch{Expected: k.agentID, Got: loaded.Manifest.AgentID}
	}

	manifestHash, err := canonicalize.CanonicalHash(loaded.Manifest)
	if err != nil {
		return nil, fmt.Errorf("kernel: boot: hashing loaded manifest: %w", err)
	}

	loaded.LastManifestHash = manifestHash
	loaded.LastBootUTC = k.clock.Now().UTC().Format(time.RFC3339)
	loaded.MonotonicCounter++

	if err := k.persist(ctx, loaded); err != nil {
		return nil, err
	}
	k.state = loaded
	k.logger.InfoContext(ctx, "kernel booted", "agent_id", k.agentID, "monotonic_counter", loaded.MonotonicCounter)
	k.recordAudit("KERNEL_BOOT", k.agentID, fmt.Sprintf("monotonic_counter=%d", loaded.MonotonicCounter))
	return cloneState(loaded), nil
}

// GetManifest returns the currently loaded manifest. Boot must have
// run first.
func (k *Kernel) GetManifest(ctx context.Context) (*contracts.CapabilityManifest, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.state == nil {
		return nil, fmt.Errorf("kernel: get_manifest: kernel has not booted")
	}
	m := k.state.Manifest
	return &m, nil
}

func (k *Kernel) persist(ctx context.Context, state *contracts.PersistedKernelState) error {
	serialized, err := canonicalize.JCSString(state)
	if err != nil {
		return fmt.Errorf("kernel: serializing state: %w", err)
	}
	if err := k.storage.Set(ctx, contracts.StorageKey(k.agentID), serialized); err != nil {
		return fmt.Errorf("kernel: persisting state: %w", err)
	}
	return nil
}

func unmarshalState(raw string) (*contracts.PersistedKernelState, error) {
	var state contracts.PersistedKernelState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func cloneState(s *contracts.PersistedKernelState) *contracts.PersistedKernelState {
	c := *s
	return &c
}

func buildFrame(actionID, agentID string, riskTier contracts.RiskTier, sdcVersion string, now time.Time, extensions contracts.FrameExtensions) *contracts.CanonicalActionFrame {
	return &contracts.CanonicalActionFrame{
		ActionID:             actionID,
		AgentID:              agentID,
		RiskTier:             riskTier,
		SDCVersion:           sdcVersion,
		PolicyVerdict:        false,
		ConstraintsSatisfied: true,
		HumanConfirmation:    false,
		TimestampUTC:         now.UTC().Format(time.RFC3339),
		HashAlgorithm:        contracts.HashAlgorithm,
		Extensions:           extensions,
	}
}

func firstNHex(hash [sha256.Size]byte, n int) string {
	full := hex.EncodeToString(hash[:])
	if n > len(full) {
		n = len(full)
	}
	return full[:n]
}

// assistanceActionID derives "assist_" + first12HexChars(SHA256(trace_id
// || query)) per §4.4, making assistance frames content-addressed.
func assistanceActionID(traceID, query string) string {
	sum := sha256.Sum256([]byte(traceID + query))
	return "assist_" + firstNHex(sum, 12)
}
