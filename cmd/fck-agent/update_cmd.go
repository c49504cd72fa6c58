package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
	"github.com/Mindburn-Labs/fck/pkg/schema"
)

func runUpdateCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(stderr)
	agentID := fs.String("agent", "", "Agent ID (REQUIRED)")
	manifestPath := fs.String("manifest", "manifest.json", "Path to the capability manifest")
	packagePath := fs.String("package", "", "Path to an update package JSON file (REQUIRED)")
	riskTier := fs.String("risk-tier", string(contracts.RiskTierStandard), "Risk tier: T0_LOW, T1_STANDARD, T2_HIGH_STAKES, T3_REGULATED")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *agentID == "" || *packagePath == "" {
		fmt.Fprintln(stderr, "Error: --agent and --package are required")
		return 2
	}

	tier, err := contracts.ParseRiskTier(*riskTier)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	raw, err := os.ReadFile(*packagePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading package: %v\n", err)
		return 2
	}
	var pkg contracts.UpdatePackage
	if err := json.Unmarshal(raw, &pkg); err != nil {
		fmt.Fprintf(stderr, "Error parsing package: %v\n", err)
		return 2
	}

	ctx := context.Background()
	k, _, _, err := newKernel(ctx, *agentID, *manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "update failed: %v\n", err)
		return 1
	}

	verify, err := buildVerifier()
	if err != nil {
		fmt.Fprintf(stderr, "update failed: %v\n", err)
		return 1
	}

	validator, err := schema.NewManifestValidator()
	if err != nil {
		fmt.Fprintf(stderr, "update failed: %v\n", err)
		return 1
	}
	manifestStore := newFileManifestStore(*manifestPath)

	registry, closeApplier, err := buildUpdateRegistry(ctx, manifestStore, validator)
	if err != nil {
		fmt.Fprintf(stderr, "update failed: %v\n", err)
		return 1
	}
	defer closeApplier(ctx)

	result := k.ApplyUpdatePackage(ctx, &pkg, verify, registry.Apply, tier)
	encoded, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(stdout, string(encoded))
	if !result.OK {
		return 1
	}
	return 0
}
