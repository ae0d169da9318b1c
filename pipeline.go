package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MaxXSoft/Ionia/ast"
	"github.com/MaxXSoft/Ionia/compiler"
	"github.com/MaxXSoft/Ionia/lexer"
	"github.com/MaxXSoft/Ionia/parser"
	"github.com/MaxXSoft/Ionia/vm"
)

// parseSource lexes and parses src, printing every lexical and
// syntactic error to stderr as it's found (component-prefixed, per the
// error-handling policy), and returns the parsed statements alongside
// each phase's error count so the caller can fold them into the
// process's exit status.
func parseSource(src string) (nodes []ast.Node, lexErrCount, parseErrCount int) {
	toks, lexErrs := lexer.New(src).Scan()
	for _, e := range lexErrs {
		fmt.Fprintln(os.Stderr, e)
	}
	nodes, parseErrs := parser.New(toks).Parse()
	for _, e := range parseErrs {
		fmt.Fprintln(os.Stderr, e)
	}
	return nodes, len(lexErrs), len(parseErrs)
}

// isBytecode reports whether data opens with the bytecode format's
// magic header, distinguishing a `.ibc` file from Ionia source text
// for commands whose positional input may be either.
func isBytecode(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == compiler.Magic
}

// loadBytecode turns path's contents into a *compiler.Bytecode: parsed
// directly if it's already a `.ibc` file, or lexed/parsed/compiled if
// it's source text. errCount folds together every phase's error count
// (0 on full success).
func loadBytecode(path string) (bc *compiler.Bytecode, errCount int, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, 1, readErr
	}
	if isBytecode(data) {
		bc, parseErr := compiler.Parse(data)
		if parseErr != nil {
			fmt.Fprintln(os.Stderr, parseErr)
			return nil, 1, parseErr
		}
		return bc, 0, nil
	}

	nodes, lexErrCount, parseErrCount := parseSource(string(data))
	bc, compileErr := compiler.Compile(nodes)
	if compileErr != nil {
		fmt.Fprintln(os.Stderr, compileErr)
		return nil, lexErrCount + parseErrCount + 1, compileErr
	}
	return bc, lexErrCount + parseErrCount, nil
}

// parseGlobalArgs turns a comma-separated list of decimal integers
// (e.g. "5,1") into VM values, for a `-g` global-function call's
// argument list. An empty string yields no arguments.
func parseGlobalArgs(s string) ([]vm.Value, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	args := make([]vm.Value, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid global-call argument %q: %w", p, err)
		}
		args[i] = vm.Integer(int32(n))
	}
	return args, nil
}

// callGlobal loads bc, runs its top-level statements, and then, if
// name is non-empty, invokes the `$`-prefixed global function it names
// with args (per CallGlobal's embedding contract) and prints the
// result the same way `<<<` would. Returns 1 on any run/call failure.
func callGlobal(machine *vm.VM, bc *compiler.Bytecode, name, argSpec string) int {
	machine.Load(bc)
	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if name == "" {
		return 0
	}
	args, err := parseGlobalArgs(argSpec)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	result, err := machine.CallGlobal(name, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if result.IsClosure() {
		fmt.Printf("<function at: 0x%08X>\n", uint32(result.Int))
	} else {
		fmt.Printf("%d\n", result.Int)
	}
	return 0
}

func versionString() string {
	v := compiler.Version()
	major := v >> 20 & 0xFFF
	minor := v >> 12 & 0xFF
	patch := v & 0xFFF
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}
