package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

func runCallCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	fs.SetOutput(stderr)
	agentID := fs.String("agent", "", "Agent ID (REQUIRED)")
	manifestPath := fs.String("manifest", "manifest.json", "Path to the capability manifest")
	operation := fs.String("operation", "", "Federation operation to invoke (REQUIRED)")
	payloadJSON := fs.String("payload", "{}", "JSON-encoded operation payload")
	riskTier := fs.String("risk-tier", string(contracts.RiskTierStandard), "Risk tier: T0_LOW, T1_STANDARD, T2_HIGH_STAKES, T3_REGULATED")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *agentID == "" || *operation == "" {
		fmt.Fprintln(stderr, "Error: --agent and --operation are required")
		return 2
	}

	tier, err := contracts.ParseRiskTier(*riskTier)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(*payloadJSON), &payload); err != nil {
		fmt.Fprintf(stderr, "Error: --payload is not valid JSON: %v\n", err)
		return 2
	}

	k, _, _, err := newKernel(context.Background(), *agentID, *manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "call failed: %v\n", err)
		return 1
	}

	result := k.GovernedFederationCall(context.Background(), *operation, payload, tier)
	encoded, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(stdout, string(encoded))
	if !result.OK {
		return 1
	}
	return 0
}
