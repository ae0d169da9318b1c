package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/MaxXSoft/Ionia/compiler"
)

// compileCmd parses and compiles a source file to a `.ibc` bytecode
// file, without executing it.
type compileCmd struct {
	output string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a source file to a bytecode file" }
func (*compileCmd) Usage() string {
	return `compile [-o path] <input>:
  Compile a source file to Ionia bytecode.
`
}

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.output, "o", "out.ibc", "output bytecode file path")
	f.StringVar(&cmd.output, "output", "out.ibc", "output bytecode file path")
}

func (cmd *compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error(compiler): no input file given")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(1)
	}

	nodes, lexErrCount, parseErrCount := parseSource(string(data))
	if lexErrCount+parseErrCount > 0 {
		return subcommands.ExitStatus(lexErrCount + parseErrCount)
	}

	bc, compileErr := compiler.Compile(nodes)
	if compileErr != nil {
		fmt.Fprintln(os.Stderr, compileErr)
		return subcommands.ExitStatus(1)
	}

	if err := os.WriteFile(cmd.output, bc.Assemble(), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(1)
	}
	return subcommands.ExitSuccess
}
