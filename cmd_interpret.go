package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/MaxXSoft/Ionia/interpreter"
	"github.com/MaxXSoft/Ionia/parser"
)

// interpretCmd is the CLI's default mode: parse a source file and
// tree-walk it with a fresh Interpreter.
type interpretCmd struct {
	print bool
}

func (*interpretCmd) Name() string     { return "interpret" }
func (*interpretCmd) Synopsis() string { return "Parse and tree-walk a source file (default mode)" }
func (*interpretCmd) Usage() string {
	return `interpret [-p] <input>:
  Parse and run a source file with the tree-walking interpreter.
`
}

func (cmd *interpretCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.print, "p", false, "echo the parsed AST as JSON before running it")
	f.BoolVar(&cmd.print, "print", false, "echo the parsed AST as JSON before running it")
}

func (cmd *interpretCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error(interpreter): no input file given")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(1)
	}

	nodes, lexErrCount, parseErrCount := parseSource(string(data))
	if cmd.print {
		parser.PrintASTJSON(nodes)
	}

	semErrCount := 0
	if lexErrCount == 0 && parseErrCount == 0 {
		i := interpreter.New()
		if err := i.Run(nodes); err != nil {
			fmt.Fprintln(os.Stderr, err)
			semErrCount = 1
		}
	}

	return subcommands.ExitStatus(lexErrCount + parseErrCount + semErrCount)
}
