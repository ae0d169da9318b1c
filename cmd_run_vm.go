package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/MaxXSoft/Ionia/vm"
)

// runVMCmd loads a `.ibc` bytecode file (or, for convenience, compiles
// a source file on the fly) and executes it on a fresh VM. With `-g`,
// it additionally invokes a `$`-prefixed global function by name after
// the top-level program runs, the embedding entry point a host uses to
// drive a loaded module from outside rather than relying solely on its
// own top-level statements.
type runVMCmd struct {
	global string
	args   string
}

func (*runVMCmd) Name() string     { return "run-vm" }
func (*runVMCmd) Synopsis() string { return "Run a bytecode file (or source file) on the VM" }
func (*runVMCmd) Usage() string {
	return `run-vm [-g name] [-args a,b,c] <input>:
  Load Ionia bytecode (or a source file, compiled on the fly) and
  execute it on the bytecode VM. -g additionally calls a $-prefixed
  global function by name once the top-level program finishes,
  passing -args as its comma-separated integer arguments.
`
}

func (cmd *runVMCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.global, "g", "", "call this $-prefixed global function after running the program")
	f.StringVar(&cmd.global, "global", "", "call this $-prefixed global function after running the program")
	f.StringVar(&cmd.args, "args", "", "comma-separated integer arguments for -g")
}

func (cmd *runVMCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "[ERROR] no input file given")
		return subcommands.ExitUsageError
	}

	bc, errCount, err := loadBytecode(args[0])
	if err != nil {
		return subcommands.ExitStatus(errCount)
	}

	machine := vm.New()
	if failed := callGlobal(machine, bc, cmd.global, cmd.args); failed != 0 {
		return subcommands.ExitStatus(errCount + failed)
	}
	return subcommands.ExitStatus(errCount)
}
