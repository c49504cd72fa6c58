package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/Mindburn-Labs/fck/pkg/assistance"
	"github.com/Mindburn-Labs/fck/pkg/config"
	"github.com/Mindburn-Labs/fck/pkg/governance"
	"github.com/Mindburn-Labs/fck/pkg/kernel"
	"github.com/Mindburn-Labs/fck/pkg/schema"
)

// newKernel wires up every collaborator and returns a booted Kernel for
// agentID, loading its manifest from manifestPath. Every subcommand
// that touches the kernel goes through this so boot's gating and
// monotonic counter apply uniformly regardless of entrypoint.
func newKernel(ctx context.Context, agentID, manifestPath string) (*kernel.Kernel, governance.Gate, assistance.Broker, error) {
	cfg := config.Load()

	validator, err := schema.NewManifestValidator()
	if err != nil {
		return nil, nil, nil, err
	}

	manifest, err := loadManifest(manifestPath, validator)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := buildStorage(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	gate, err := buildGate()
	if err != nil {
		return nil, nil, nil, err
	}

	attestor, err := buildAttestor()
	if err != nil {
		return nil, nil, nil, err
	}

	fed := buildFederationClient(cfg)
	broker := buildAssistanceBroker(fed)

	k := kernel.New(agentID, store, gate, attestor, fed, broker)
	if _, err := k.Boot(ctx, manifest); err != nil {
		return nil, nil, nil, err
	}
	return k, gate, broker, nil
}

func runBootCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("boot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	agentID := fs.String("agent", "", "Agent ID (REQUIRED)")
	manifestPath := fs.String("manifest", "manifest.json", "Path to the capability manifest")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *agentID == "" {
		fmt.Fprintln(stderr, "Error: --agent is required")
		return 2
	}

	k, _, _, err := newKernel(context.Background(), *agentID, *manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "boot failed: %v\n", err)
		return 1
	}

	m, err := k.GetManifest(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "boot failed: %v\n", err)
		return 1
	}
	encoded, _ := json.MarshalIndent(m, "", "  ")
	fmt.Fprintf(stdout, "booted agent %s\n%s\n", *agentID, encoded)
	return 0
}
