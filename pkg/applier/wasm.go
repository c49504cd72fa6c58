package applier

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// WASMSandboxConfig bounds what a SKILL_CAPSULE module may consume.
type WASMSandboxConfig struct {
	MemoryLimitBytes uint64
	CPUTimeLimit     time.Duration
}

// WASMApplier runs a SKILL_CAPSULE update package's payload as a
// WebAssembly module inside a deny-by-default wazero sandbox: no
// filesystem, no network, no ambient authority. The module's exit
// status determines apply success or failure; stderr is captured and
// quoted in the instantiation error, stdout is captured and discarded.
type WASMApplier struct {
	runtime wazero.Runtime
	config  wazero.ModuleConfig
	limits  WASMSandboxConfig
}

// NewWASMApplier builds a sandboxed applier bounded by cfg.
func NewWASMApplier(ctx context.Context, cfg WASMSandboxConfig) (*WASMApplier, error) {
	// Close a running module when its context is done, so CPUTimeLimit
	// interrupts a capsule that is still executing.
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.MemoryLimitBytes > 0 {
		pages := uint32(cfg.MemoryLimitBytes / (64 * 1024))
		if pages == 0 {
			pages = 1
		}
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(pages)
	}

	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	modCfg := wazero.NewModuleConfig().
		WithName("fck-skill-capsule").
		WithStartFunctions("_start")
	// Deny-by-default: no WithFSConfig, no WithSysNanotime, no
	// WithRandSource, no WithEnv — the capsule gets stdin/stdout/stderr
	// only.

	return &WASMApplier{runtime: r, config: modCfg, limits: cfg}, nil
}

// Apply satisfies BundleApplier for contracts.UpdateChannelSkillCapsule.
func (a *WASMApplier) Apply(ctx context.Context, pkg *contracts.UpdatePackage) error {
	if a.limits.CPUTimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.limits.CPUTimeLimit)
		defer cancel()
	}

	wasmBytes, err := base64.StdEncoding.DecodeString(pkg.PayloadB64)
	if err != nil {
		return fmt.Errorf("applier: decoding payload for %s: %w", pkg.PackageID, err)
	}

	var stdout, stderr bytes.Buffer
	modCfg := a.config.
		WithStdin(bytes.NewReader(nil)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	compiled, err := a.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("applier: compiling skill capsule %s: %w", pkg.PackageID, err)
	}
	defer func() { _ = compiled.Close(ctx) }()

	mod, err := a.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("applier: skill capsule %s timed out after %v", pkg.PackageID, a.limits.CPUTimeLimit)
		}
		return fmt.Errorf("applier: instantiating skill capsule %s: %w (stderr: %s)", pkg.PackageID, err, stderr.String())
	}
	defer func() { _ = mod.Close(ctx) }()

	return nil
}

// Close shuts down the wazero runtime, freeing all resources.
func (a *WASMApplier) Close(ctx context.Context) error {
	return a.runtime.Close(ctx)
}
