// flowctl is a command-line tool for applying operations to a flow
// document and inspecting the result, without any server or database in
// the loop.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/smilemakc/flowgraph/internal/config"
	"github.com/smilemakc/flowgraph/internal/domain"
	"github.com/smilemakc/flowgraph/internal/engine"
	"github.com/smilemakc/flowgraph/internal/infrastructure/logger"
	"github.com/smilemakc/flowgraph/internal/validation"
)

func defaultValidator() validation.StepValidator {
	return validation.NewDefaultValidator(nil, validation.NewExprConditionValidator())
}

func defaultSemver() validation.SemverComparator {
	return validation.NewDottedComparator()
}

const usage = `flowctl - flow-graph transformation tool

USAGE:
    flowctl <command> [options]

COMMANDS:
    apply       Apply an operation to a flow document
    normalize   Normalize a flow document
    pieces      List the pieces used by a flow document
    validate    Report whether a flow document is valid
    help        Show this help message

APPLY OPTIONS:
    -flow <file>        Path to the flow document (JSON, required)
    -op <file>          Path to the operation document (JSON, required)
    -output <file>      Write the result here instead of stdout

NORMALIZE / PIECES / VALIDATE OPTIONS:
    -flow <file>        Path to the flow document (JSON, required)
    -output <file>      Write the result here instead of stdout (normalize only)

ENVIRONMENT VARIABLES:
    LOG_LEVEL           debug, info, warn, error (default: info)
    ENGINE_DEFAULTS     Path to a YAML file overriding legacy-piece defaults
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg := config.Load()
	logger.Setup(cfg.LogLevel)

	defaults, err := config.LoadEngineDefaults(os.Getenv("ENGINE_DEFAULTS"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load engine defaults: %v\n", err)
		os.Exit(1)
	}
	eng := engine.New(defaultValidator(), defaultSemver(), defaults.LegacyPieces)

	switch os.Args[1] {
	case "apply":
		handleApply(eng, os.Args[2:])
	case "normalize":
		handleNormalize(eng, os.Args[2:])
	case "pieces":
		handlePieces(os.Args[2:])
	case "validate":
		handleValidate(eng, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func handleApply(eng *engine.Engine, args []string) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	flowPath := fs.String("flow", "", "Path to the flow document (required)")
	opPath := fs.String("op", "", "Path to the operation document (required)")
	output := fs.String("output", "", "Write the result here instead of stdout")
	_ = fs.Parse(args)

	if *flowPath == "" || *opPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -flow and -op are required")
		os.Exit(1)
	}

	flow := readFlow(*flowPath)
	op := readOperation(*opPath)

	result, err := eng.Apply(flow, op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: apply failed: %v\n", err)
		os.Exit(1)
	}

	writeJSON(*output, result)
}

func handleNormalize(eng *engine.Engine, args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	flowPath := fs.String("flow", "", "Path to the flow document (required)")
	output := fs.String("output", "", "Write the result here instead of stdout")
	_ = fs.Parse(args)

	if *flowPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -flow is required")
		os.Exit(1)
	}

	flow := readFlow(*flowPath)
	writeJSON(*output, eng.Normalize(flow))
}

func handlePieces(args []string) {
	fs := flag.NewFlagSet("pieces", flag.ExitOnError)
	flowPath := fs.String("flow", "", "Path to the flow document (required)")
	_ = fs.Parse(args)

	if *flowPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -flow is required")
		os.Exit(1)
	}

	flow := readFlow(*flowPath)
	for _, piece := range engine.GetUsedPieces(flow.Trigger) {
		fmt.Println(piece)
	}
}

func handleValidate(eng *engine.Engine, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	flowPath := fs.String("flow", "", "Path to the flow document (required)")
	_ = fs.Parse(args)

	if *flowPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -flow is required")
		os.Exit(1)
	}

	flow := readFlow(*flowPath)
	if eng.IsValid(flow) {
		fmt.Println("valid")
		return
	}
	fmt.Println("invalid")
	os.Exit(1)
}

func readFlow(path string) *domain.FlowVersion {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read flow document: %v\n", err)
		os.Exit(1)
	}
	var flow domain.FlowVersion
	if err := json.Unmarshal(data, &flow); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to parse flow document: %v\n", err)
		os.Exit(1)
	}
	return &flow
}

func readOperation(path string) domain.Operation {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read operation document: %v\n", err)
		os.Exit(1)
	}
	var op domain.Operation
	if err := json.Unmarshal(data, &op); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to parse operation document: %v\n", err)
		os.Exit(1)
	}
	return op
}

func writeJSON(output string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal result: %v\n", err)
		os.Exit(1)
	}
	if output == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Result written to %s\n", output)
}
