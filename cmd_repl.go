package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/MaxXSoft/Ionia/compiler"
	"github.com/MaxXSoft/Ionia/interpreter"
	"github.com/MaxXSoft/Ionia/lexer"
	"github.com/MaxXSoft/Ionia/parser"
	"github.com/MaxXSoft/Ionia/token"
	"github.com/MaxXSoft/Ionia/vm"
)

// replCmd is an interactive, line-editing REPL. Definitions persist
// across lines: by default through one long-lived Interpreter, or, with
// `-c`, through one long-lived CodeGen/VM pair so compiled globals
// accumulate the same way.
type replCmd struct {
	print   bool
	compile bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive REPL session" }
func (*replCmd) Usage() string {
	return `repl [-p] [-c]:
  Start an interactive, line-editing REPL. Definitions persist across
  lines until the session ends.
`
}

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.print, "p", false, "echo the parsed AST as JSON before evaluating it")
	f.BoolVar(&cmd.print, "print", false, "echo the parsed AST as JSON before evaluating it")
	f.BoolVar(&cmd.compile, "c", false, "evaluate through the bytecode compiler/VM instead of the tree-walking interpreter")
	f.BoolVar(&cmd.compile, "compile", false, "evaluate through the bytecode compiler/VM instead of the tree-walking interpreter")
}

func (cmd *replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("Welcome to Ionia!")

	interp := interpreter.New()
	machine := vm.New()

	var buf strings.Builder
	for {
		line, readErr := rl.Readline()
		if readErr == readline.ErrInterrupt {
			if buf.Len() == 0 {
				continue
			}
			buf.Reset()
			rl.SetPrompt(">>> ")
			continue
		}
		if readErr == io.EOF || readErr != nil {
			break
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)
		source := buf.String()

		toks, lexErrs := lexer.New(source).Scan()
		if !parensBalanced(toks) {
			rl.SetPrompt("... ")
			continue
		}
		rl.SetPrompt(">>> ")
		buf.Reset()

		for _, e := range lexErrs {
			fmt.Println(e)
		}
		nodes, parseErrs := parser.New(toks).Parse()
		for _, e := range parseErrs {
			fmt.Println(e)
		}
		if len(lexErrs) > 0 || len(parseErrs) > 0 {
			continue
		}

		if cmd.print {
			parser.PrintASTJSON(nodes)
		}

		if cmd.compile {
			bc, compileErr := compiler.Compile(nodes)
			if compileErr != nil {
				fmt.Println(compileErr)
				continue
			}
			machine.Load(bc)
			if runErr := machine.Run(); runErr != nil {
				fmt.Println(runErr)
			}
			continue
		}

		if runErr := interp.Run(nodes); runErr != nil {
			fmt.Println(runErr)
		}
	}
	return subcommands.ExitSuccess
}

// parensBalanced reports whether toks contains a complete, balanced run
// of parentheses, the REPL's signal that the buffered input is ready to
// parse rather than the start of a statement that continues on the next
// line.
func parensBalanced(toks []token.Token) bool {
	depth := 0
	for _, t := range toks {
		switch t.TokenType {
		case token.LPA:
			depth++
		case token.RPA:
			depth--
		}
	}
	return depth <= 0
}
