package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/MaxXSoft/Ionia/compiler"
	"github.com/MaxXSoft/Ionia/vm"
)

// compileRunCmd compiles a source file and immediately hands the
// resulting in-memory bytecode to a fresh VM, without touching disk.
// With `-g`, it additionally invokes a `$`-prefixed global function by
// name once the top-level program finishes.
type compileRunCmd struct {
	global string
	args   string
}

func (*compileRunCmd) Name() string     { return "compile-run" }
func (*compileRunCmd) Synopsis() string { return "Compile a source file and run it on the VM" }
func (*compileRunCmd) Usage() string {
	return `compile-run [-g name] [-args a,b,c] <input>:
  Compile a source file and execute the result on the bytecode VM. -g
  additionally calls a $-prefixed global function by name once the
  top-level program finishes, passing -args as its comma-separated
  integer arguments.
`
}

func (cmd *compileRunCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.global, "g", "", "call this $-prefixed global function after running the program")
	f.StringVar(&cmd.global, "global", "", "call this $-prefixed global function after running the program")
	f.StringVar(&cmd.args, "args", "", "comma-separated integer arguments for -g")
}

func (cmd *compileRunCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	machine := vm.New()
	if failed := callGlobal(machine, bc, cmd.global, cmd.args); failed != 0 {
		return subcommands.ExitStatus(failed)
	}
	return subcommands.ExitSuccess
}
