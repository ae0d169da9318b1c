package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// main wires the subcommand dispatcher. A bare invocation, or `-p`/
// `--print` given with no other argument, both drop straight into the
// REPL rather than making the user type `ionia repl`; `-v`/`--version`
// and `-h`/`--help` given alone are likewise shorthand for their own
// subcommands. A first argument naming an existing file runs it through
// `interpret`, the default mode.
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	switch {
	case len(args) == 0:
		args = []string{"repl"}
	case len(args) == 1 && (args[0] == "-p" || args[0] == "--print"):
		args = []string{"repl", "-p"}
	case len(args) == 1 && (args[0] == "-v" || args[0] == "--version"):
		args = []string{"version"}
	case len(args) == 1 && (args[0] == "-h" || args[0] == "--help"):
		args = []string{"help"}
	default:
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			args = append([]string{"interpret"}, args...)
		}
	}

	flags := flag.NewFlagSet("ionia", flag.ContinueOnError)
	commander := subcommands.NewCommander(flags, "ionia")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&versionCmd{}, "")
	commander.Register(&replCmd{}, "")
	commander.Register(&interpretCmd{}, "")
	commander.Register(&compileCmd{}, "")
	commander.Register(&compileRunCmd{}, "")
	commander.Register(&runVMCmd{}, "")
	commander.Register(&disassembleCmd{}, "")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	return int(commander.Execute(context.Background()))
}

type versionCmd struct{}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "Print the bytecode format version" }
func (*versionCmd) Usage() string {
	return "version:\n  Print the bytecode format's major.minor.patch version.\n"
}
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Println(versionString())
	return subcommands.ExitSuccess
}
