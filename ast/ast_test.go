package ast

import "testing"

func TestEnvironmentChainLookupAndShadowing(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("x", Integer(1))

	child := NewEnvironment(root)
	if v, ok := child.Get("x"); !ok || v.Int != 1 {
		t.Fatalf("expected inherited x=1, got %v, ok=%v", v, ok)
	}

	child.Define("x", Integer(2))
	if v, ok := child.Get("x"); !ok || v.Int != 2 {
		t.Fatalf("expected shadowed x=2, got %v, ok=%v", v, ok)
	}
	if v, ok := root.Get("x"); !ok || v.Int != 1 {
		t.Fatalf("shadowing must not mutate outer scope, got %v, ok=%v", v, ok)
	}
}

func TestEnvironmentGetMissing(t *testing.T) {
	env := NewEnvironment(nil)
	if _, ok := env.Get("nope"); ok {
		t.Fatalf("expected lookup of undefined symbol to fail")
	}
}

func TestValueEqual(t *testing.T) {
	a := Integer(5)
	b := Integer(5)
	c := Integer(6)
	if !a.Equal(b) {
		t.Errorf("expected equal integers to compare equal")
	}
	if a.Equal(c) {
		t.Errorf("expected different integers to compare unequal")
	}

	cl := &Closure{Params: []string{"x"}}
	v1 := ClosureValue(cl)
	v2 := ClosureValue(cl)
	other := ClosureValue(&Closure{Params: []string{"x"}})
	if !v1.Equal(v2) {
		t.Errorf("expected same closure payload to compare equal")
	}
	if v1.Equal(other) {
		t.Errorf("expected distinct closures to compare unequal")
	}
	if a.Equal(v1) {
		t.Errorf("expected integer and closure to never compare equal")
	}
}

func TestNodeCloneIsDeep(t *testing.T) {
	body := &Define{Name: "acc", Expr: &Num{Value: 1}}
	fn := &Func{Params: []string{"n"}, Body: body}

	clone := fn.Clone().(*Func)
	clone.Params[0] = "mutated"
	clone.Body.(*Define).Name = "mutated"

	if fn.Params[0] != "n" {
		t.Errorf("clone must not alias the original's Params slice")
	}
	if fn.Body.(*Define).Name != "acc" {
		t.Errorf("clone must not alias the original's Body")
	}
}

func TestFunCallCloneDeepCopiesArgs(t *testing.T) {
	call := &FunCall{Callee: &Id{Name: "f"}, Args: []Node{&Num{Value: 1}, &Id{Name: "x"}}}
	clone := call.Clone().(*FunCall)
	clone.Args[0].(*Num).Value = 99
	if call.Args[0].(*Num).Value != 1 {
		t.Errorf("clone must not alias original argument nodes")
	}
}
