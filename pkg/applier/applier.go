// Package applier implements the injected applyBundle callback for
// ApplyUpdatePackage. §4.5 forbids the kernel from interpreting
// payload_b64 itself — no self-modifying code path exists — so every
// concrete applier here lives outside the kernel and is wired in by
// whoever constructs it.
package applier

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// BundleApplier is the injected callback the kernel calls from
// ApplyUpdatePackage after governance and attestation clear a package.
// Any error it returns is treated as a fatal update failure; kernel
// state is not updated.
type BundleApplier func(ctx context.Context, pkg *contracts.UpdatePackage) error

// Registry dispatches to a per-channel BundleApplier. It exists so a
// kernel deployment can wire SKILL_CAPSULE to a sandboxed runtime and
// CONFIG_BUNDLE to a schema-checked patcher without the kernel itself
// ever branching on channel.
type Registry struct {
	appliers map[contracts.UpdateChannel]BundleApplier
}

func NewRegistry() *Registry {
	return &Registry{appliers: make(map[contracts.UpdateChannel]BundleApplier)}
}

func (r *Registry) Register(channel contracts.UpdateChannel, applier BundleApplier) *Registry {
	r.appliers[channel] = applier
	return r
}

// Apply satisfies BundleApplier, dispatching by pkg.Channel. A channel
// with no registered applier is a configuration error, not a silent
// success — the kernel's allowed_channels precondition should already
// have ruled this out, so reaching it means the registry and the
// manifest have drifted.
func (r *Registry) Apply(ctx context.Context, pkg *contracts.UpdatePackage) error {
	applier, ok := r.appliers[pkg.Channel]
	if !ok {
		return errUnregisteredChannel(pkg.Channel)
	}
	return applier(ctx, pkg)
}

type unregisteredChannelError contracts.UpdateChannel

func (e unregisteredChannelError) Error() string {
	return "applier: no applier registered for channel " + string(e)
}

func errUnregisteredChannel(ch contracts.UpdateChannel) error {
	return unregisteredChannelError(ch)
}
