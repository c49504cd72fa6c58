package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

func runManifestCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("manifest", flag.ContinueOnError)
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
		fmt.Fprintf(stderr, "get_manifest failed: %v\n", err)
		return 1
	}

	m, err := k.GetManifest(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "get_manifest failed: %v\n", err)
		return 1
	}
	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "get_manifest failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(encoded))
	return 0
}
