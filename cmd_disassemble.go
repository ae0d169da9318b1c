package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/MaxXSoft/Ionia/compiler"
)

// disassembleCmd loads either a source file (compiling it first) or a
// `.ibc` bytecode file and prints its disassembly, defaulting to
// stdout and writing to `-o`'s path when given.
type disassembleCmd struct {
	output string
}

func (*disassembleCmd) Name() string { return "disassemble" }
func (*disassembleCmd) Synopsis() string {
	return "Disassemble a source file or bytecode file"
}
func (*disassembleCmd) Usage() string {
	return `disassemble [-o path] <input>:
  Disassemble Ionia bytecode (or a source file, compiled on the fly).
`
}

func (cmd *disassembleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.output, "o", "", "write the disassembly here instead of stdout")
	f.StringVar(&cmd.output, "output", "", "write the disassembly here instead of stdout")
}

func (cmd *disassembleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error(compiler): no input file given")
		return subcommands.ExitUsageError
	}

	bc, errCount, err := loadBytecode(args[0])
	if err != nil {
		return subcommands.ExitStatus(errCount)
	}

	text := compiler.Disassemble(bc)
	if cmd.output == "" {
		fmt.Print(text)
	} else if err := os.WriteFile(cmd.output, []byte(text), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitStatus(errCount + 1)
	}
	return subcommands.ExitStatus(errCount)
}
