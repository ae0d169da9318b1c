package interpreter

import (
	"bufio"
	"strings"
	"testing"

	"github.com/MaxXSoft/Ionia/compiler"
	"github.com/MaxXSoft/Ionia/lexer"
	"github.com/MaxXSoft/Ionia/parser"
	"github.com/MaxXSoft/Ionia/vm"
)

// runSource parses and interprets src directly (no compiler/VM
// involved), returning whatever stdout its `<<<` calls produced.
func runSource(t *testing.T, src, stdin string) string {
	t.Helper()
	toks, lexErrs := lexer.New(src).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	nodes, parseErrs := parser.New(toks).Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}

	i := New()
	var out strings.Builder
	i.Stdout = &out
	i.Stdin = bufio.NewReader(strings.NewReader(stdin))
	if err := i.Run(nodes); err != nil {
		t.Fatalf("run error: %v", err)
	}
	return out.String()
}

// runSourceErr is runSource's counterpart for programs expected to
// halt with a semantic error: it returns the error instead of failing
// the test when one occurs.
func runSourceErr(t *testing.T, src string) error {
	t.Helper()
	toks, lexErrs := lexer.New(src).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	nodes, parseErrs := parser.New(toks).Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	return New().Run(nodes)
}

func TestConstant(t *testing.T) {
	src := "main = (): 42\n<<<(main())\n"
	if got := runSource(t, src, ""); got != "42" {
		t.Fatalf("got %q, want %q", got, "42")
	}
}

func TestClosureUpvalue(t *testing.T) {
	src := "mk = (x): (): x\nf = mk(7)\n<<<(f())\n"
	if got := runSource(t, src, ""); got != "7" {
		t.Fatalf("got %q, want %q", got, "7")
	}
}

func TestConditional(t *testing.T) {
	src := "<<<(?(lt(1,2), (): 10, (): 20))\n"
	if got := runSource(t, src, ""); got != "10" {
		t.Fatalf("got %q, want %q", got, "10")
	}
}

func TestFactorialTailRecursion(t *testing.T) {
	src := "$fact = (n, acc): ?(le(n, 1), (): acc, (): $fact(-(n,1), *(n,acc)))\n<<<($fact(5, 1))\n"
	if got := runSource(t, src, ""); got != "120" {
		t.Fatalf("got %q, want %q", got, "120")
	}
}

func TestChainedApplication(t *testing.T) {
	src := "adder = (x): (y): +(x,y)\n<<<(adder(3)(4))\n"
	if got := runSource(t, src, ""); got != "7" {
		t.Fatalf("got %q, want %q", got, "7")
	}
}

func TestUndefinedSymbol(t *testing.T) {
	err := runSourceErr(t, "<<<(nope)\n")
	if err == nil {
		t.Fatal("expected a runtime error for an undefined symbol")
	}
	if !strings.Contains(err.Error(), "not found") || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("error %q does not mention 'not found' and 'nope'", err.Error())
	}
}

// TestLexicalScoping checks that a closure reads an outer binding by
// lookup rather than by value-at-capture-time: redefining the outer
// name after the closure is created must still be visible to it.
func TestLexicalScoping(t *testing.T) {
	src := "x = 1\nf = (): x\nx = 2\n<<<(f())\n"
	if got := runSource(t, src, ""); got != "2" {
		t.Fatalf("got %q, want %q", got, "2")
	}
}

// TestArityMismatch checks that calling a closure with the wrong
// number of arguments halts the run with an error mentioning
// "argument count mismatch".
func TestArityMismatch(t *testing.T) {
	err := runSourceErr(t, "f = (x, y): +(x,y)\n<<<(f(1))\n")
	if err == nil {
		t.Fatal("expected an arity-mismatch error")
	}
	if !strings.Contains(err.Error(), "argument count mismatch") {
		t.Fatalf("error %q does not mention 'argument count mismatch'", err.Error())
	}
}

// TestInterpreterVMEquivalence runs the same programs through both
// backends and checks they produce identical stdout, per the
// interpreter/VM equivalence property: same source, same captured
// stdout, regardless of which backend runs it.
func TestInterpreterVMEquivalence(t *testing.T) {
	cases := []string{
		"main = (): 42\n<<<(main())\n",
		"mk = (x): (): x\nf = mk(7)\n<<<(f())\n",
		"<<<(?(lt(1,2), (): 10, (): 20))\n",
		"$fact = (n, acc): ?(le(n, 1), (): acc, (): $fact(-(n,1), *(n,acc)))\n<<<($fact(5, 1))\n",
		"adder = (x): (y): +(x,y)\n<<<(adder(3)(4))\n",
	}
	for _, src := range cases {
		interpOut := runSource(t, src, "")

		toks, lexErrs := lexer.New(src).Scan()
		if len(lexErrs) != 0 {
			t.Fatalf("lex errors: %v", lexErrs)
		}
		nodes, parseErrs := parser.New(toks).Parse()
		if len(parseErrs) != 0 {
			t.Fatalf("parse errors: %v", parseErrs)
		}
		bc, err := compiler.Compile(nodes)
		if err != nil {
			t.Fatalf("compile error: %v", err)
		}

		machine := vm.New()
		var vmOut strings.Builder
		machine.Stdout = &vmOut
		machine.Load(bc)
		if err := machine.Run(); err != nil {
			t.Fatalf("vm run error: %v", err)
		}

		if interpOut != vmOut.String() {
			t.Fatalf("backend divergence for %q: interpreter=%q vm=%q", src, interpOut, vmOut.String())
		}
	}
}
