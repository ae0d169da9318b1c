package compiler

import (
	"reflect"
	"testing"

	"github.com/MaxXSoft/Ionia/ast"
)

func TestSmartGetSuppressesRedundantGET(t *testing.T) {
	nodes := []ast.Node{
		&ast.Define{Name: "x", Expr: &ast.Num{Value: 1}},
		&ast.Id{Name: "x"},
	}
	bc, err := Compile(nodes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// CNST(4) + SET(4) + RET(1), with the Id's GET suppressed entirely.
	if len(bc.Code) != 9 {
		t.Fatalf("expected 9 bytes of code (no redundant GET), got %d: % x", len(bc.Code), bc.Code)
	}
	op, _, _ := DecodeAt(bc.Code, 8)
	if op != RET {
		t.Errorf("expected trailing RET, got %v", op)
	}
}

func TestCallToTcalPeephole(t *testing.T) {
	// $f = (n): g(n)  -- a tail call to another (undefined-at-compile-
	// time, that's fine) closure should compile its trailing CALL into
	// a TCAL with no following RET.
	nodes := []ast.Node{
		&ast.Define{
			Name: "$f",
			Expr: &ast.Func{
				Params: []string{"n"},
				Body: &ast.FunCall{
					Callee: &ast.Id{Name: "g"},
					Args:   []ast.Node{&ast.Id{Name: "n"}},
				},
			},
		},
	}
	bc, err := Compile(nodes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(bc.Globals) != 1 {
		t.Fatalf("expected one global function entry, got %d", len(bc.Globals))
	}
	g := bc.Globals[0]
	if bc.Symbols[g.SymID] != "$f" {
		t.Errorf("global function name = %q, want $f", bc.Symbols[g.SymID])
	}
	if g.ArgCount != 1 {
		t.Errorf("global function arg count = %d, want 1", g.ArgCount)
	}

	// Walk the function body's instructions and confirm the last one is
	// TCAL, with no RET anywhere after it.
	pc := int(bc.PCTable[g.PCID])
	var lastOp Opcode
	for pc < len(bc.Code) {
		op, _, length := DecodeAt(bc.Code, pc)
		lastOp = op
		pc += length
	}
	if lastOp != TCAL {
		t.Errorf("expected function body to end in TCAL, last op was %v", lastOp)
	}
}

func TestNonTailCallEmitsPlainRet(t *testing.T) {
	// $f = (): 42 -- body is a bare constant, not a call, so it must
	// close with RET rather than TCAL.
	nodes := []ast.Node{
		&ast.Define{
			Name: "$f",
			Expr: &ast.Func{Body: &ast.Num{Value: 42}},
		},
	}
	bc, err := Compile(nodes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pc := int(bc.PCTable[bc.Globals[0].PCID])
	var lastOp Opcode
	for pc < len(bc.Code) {
		op, _, length := DecodeAt(bc.Code, pc)
		lastOp = op
		pc += length
	}
	if lastOp != RET {
		t.Errorf("expected function body to end in RET, got %v", lastOp)
	}
}

func TestNestedFuncEnqueuesToFixpoint(t *testing.T) {
	// mk = (x): (): x -- compiling the outer function's body enqueues
	// the inner closure; both must end up with resolved pc_ids.
	nodes := []ast.Node{
		&ast.Define{
			Name: "mk",
			Expr: &ast.Func{
				Params: []string{"x"},
				Body:   &ast.Func{Body: &ast.Id{Name: "x"}},
			},
		},
	}
	bc, err := Compile(nodes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(bc.PCTable) != 2 {
		t.Fatalf("expected two function pc_ids (outer + inner), got %d", len(bc.PCTable))
	}
}

func TestUnnamedFuncIsNotRegisteredGlobal(t *testing.T) {
	nodes := []ast.Node{
		&ast.Define{Name: "f", Expr: &ast.Func{Body: &ast.Num{Value: 1}}},
	}
	bc, err := Compile(nodes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(bc.Globals) != 0 {
		t.Errorf("function name without '$' prefix must not register as global, got %d entries", len(bc.Globals))
	}
}

func TestBytecodeRoundTrip(t *testing.T) {
	nodes := []ast.Node{
		&ast.Define{Name: "$fact", Expr: &ast.Func{
			Params: []string{"n", "acc"},
			Body: &ast.FunCall{
				Callee: &ast.Id{Name: "?"},
				Args: []ast.Node{
					&ast.FunCall{Callee: &ast.Id{Name: "le"}, Args: []ast.Node{&ast.Id{Name: "n"}, &ast.Num{Value: 1}}},
					&ast.Func{Body: &ast.Id{Name: "acc"}},
					&ast.Func{Body: &ast.Num{Value: 0}},
				},
			},
		}},
	}
	bc, err := Compile(nodes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	buf := bc.Assemble()
	parsed, err := Parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(bc.Symbols, parsed.Symbols) {
		t.Errorf("symbol table mismatch: %v vs %v", bc.Symbols, parsed.Symbols)
	}
	if !reflect.DeepEqual(bc.PCTable, parsed.PCTable) {
		t.Errorf("pc table mismatch: %v vs %v", bc.PCTable, parsed.PCTable)
	}
	if !reflect.DeepEqual(bc.Globals, parsed.Globals) {
		t.Errorf("global function table mismatch: %v vs %v", bc.Globals, parsed.Globals)
	}
	if !reflect.DeepEqual(bc.Code, parsed.Code) {
		t.Errorf("code section mismatch")
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := Parse(buf); err == nil {
		t.Fatal("expected a magic-mismatch error")
	}
}
