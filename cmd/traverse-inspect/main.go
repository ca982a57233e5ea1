// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// traverse-inspect is tooling for Traverse flow artifacts: it
// validates declarative flow definitions, renders their state graphs
// as Graphviz DOT, and decodes recorded trace files.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/traverse-foundation/traverse/lib/codec"
	"github.com/traverse-foundation/traverse/lib/flowdef"
	"github.com/traverse-foundation/traverse/observe"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	switch os.Args[1] {
	case "validate":
		return runValidate(os.Args[2:])
	case "graph":
		return runGraph(os.Args[2:])
	case "trace":
		return runTrace(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: traverse-inspect <subcommand> [flags]

Subcommands:
  validate <definition>   Check a flow definition (.yaml/.yml/.json/.jsonc)
  graph <definition>      Render a flow definition as Graphviz DOT
  trace <file>            Decode a recorded trace file

Run 'traverse-inspect <subcommand> --help' for subcommand flags.
`)
}

func runValidate(args []string) error {
	flags := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	quiet := flags.BoolP("quiet", "q", false, "suppress output, report through the exit code only")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("validate: exactly one definition file expected")
	}

	definition, err := flowdef.ReadFile(flags.Arg(0))
	if err != nil {
		return err
	}

	issues := flowdef.Validate(definition)
	if len(issues) == 0 {
		if !*quiet {
			fmt.Printf("%s: ok (%d states, %d events, %d rules, %d effects)\n",
				flags.Arg(0), len(definition.States), len(definition.Events),
				len(definition.Rules), len(definition.Effects))
		}
		return nil
	}

	if !*quiet {
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "%s: %s\n", flags.Arg(0), issue)
		}
	}
	return fmt.Errorf("%d issue(s) found", len(issues))
}

func runGraph(args []string) error {
	flags := pflag.NewFlagSet("graph", pflag.ContinueOnError)
	output := flags.StringP("output", "o", "", "write DOT to this file instead of stdout")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("graph: exactly one definition file expected")
	}

	definition, err := flowdef.ReadFile(flags.Arg(0))
	if err != nil {
		return err
	}
	if issues := flowdef.Validate(definition); len(issues) > 0 {
		return fmt.Errorf("definition has %d issue(s), fix them before graphing:\n%s",
			len(issues), strings.Join(issues, "\n"))
	}

	dot := flowdef.DOT(definition)
	if *output == "" {
		fmt.Print(dot)
		return nil
	}
	if err := os.WriteFile(*output, []byte(dot), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	return nil
}

func runTrace(args []string) error {
	flags := pflag.NewFlagSet("trace", pflag.ContinueOnError)
	diagnostic := flags.Bool("diag", false, "print records in CBOR diagnostic notation")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("trace: exactly one trace file expected")
	}

	file, err := os.Open(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer file.Close()

	reader := observe.NewReader(file)
	defer reader.Close()

	count := 0
	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", count, err)
		}
		if err := printRecord(record, *diagnostic); err != nil {
			return err
		}
		count++
	}
	fmt.Fprintf(os.Stderr, "%d record(s)\n", count)
	return nil
}

func printRecord(record observe.Record, diagnostic bool) error {
	if diagnostic {
		raw, err := codec.Marshal(record)
		if err != nil {
			return fmt.Errorf("re-encoding record: %w", err)
		}
		diag, err := codec.Diagnose(raw)
		if err != nil {
			return fmt.Errorf("diagnosing record: %w", err)
		}
		fmt.Println(diag)
		return nil
	}

	from := string(record.From)
	if record.FromDetail != "" {
		from = record.FromDetail
	}
	to := string(record.To)
	if record.ToDetail != "" {
		to = record.ToDetail
	}
	event := string(record.Event)
	if record.EventDetail != "" {
		event = record.EventDetail
	}
	suffix := ""
	if record.Animated {
		suffix = "  animated"
	}
	fmt.Printf("%s  %-20s %s -> %s%s\n",
		record.At.UTC().Format("2006-01-02T15:04:05.000Z"),
		event, from, to, suffix)
	return nil
}
