package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

func runAssistCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("assist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	agentID := fs.String("agent", "", "Agent ID (REQUIRED)")
	manifestPath := fs.String("manifest", "manifest.json", "Path to the capability manifest")
	query := fs.String("query", "", "Assistance query (REQUIRED)")
	traceID := fs.String("trace-id", "", "Trace ID (defaults to a new UUID)")
	riskTier := fs.String("risk-tier", string(contracts.RiskTierStandard), "Risk tier: T0_LOW, T1_STANDARD, T2_HIGH_STAKES, T3_REGULATED")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *agentID == "" || *query == "" {
		fmt.Fprintln(stderr, "Error: --agent and --query are required")
		return 2
	}
	if *traceID == "" {
		*traceID = uuid.New().String()
	}

	tier, err := contracts.ParseRiskTier(*riskTier)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	k, _, _, err := newKernel(context.Background(), *agentID, *manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "assist failed: %v\n", err)
		return 1
	}

	result := k.RequestAssistance(context.Background(), *traceID, *query, tier)
	encoded, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(stdout, string(encoded))
	if !result.OK {
		return 1
	}
	return 0
}
