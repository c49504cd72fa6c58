package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the CLI entrypoint, separated from main for testability.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stdout)
		return 2
	}

	switch args[1] {
	case "boot":
		return runBootCmd(args[2:], stdout, stderr)
	case "manifest":
		return runManifestCmd(args[2:], stdout, stderr)
	case "call":
		return runCallCmd(args[2:], stdout, stderr)
	case "assist":
		return runAssistCmd(args[2:], stdout, stderr)
	case "update":
		return runUpdateCmd(args[2:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "fck-agent: per-agent federated capability kernel")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  fck-agent <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")
	fmt.Fprintln(w, "  boot      Boot the kernel, persisting or loading agent state")
	fmt.Fprintln(w, "  manifest  Print the currently loaded capability manifest")
	fmt.Fprintln(w, "  call      Issue a governed federation call")
	fmt.Fprintln(w, "  assist    Issue a governed assistance request")
	fmt.Fprintln(w, "  update    Apply a signed update package")
	fmt.Fprintln(w, "  help      Show this help")
}
