// Package interpreter implements Ionia's tree-walking evaluator. The
// frame type here satisfies ast.Evaluator, so an AST produced by package
// parser can be run directly without going through the bytecode
// compiler and VM at all.
package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/MaxXSoft/Ionia/ast"
)

// Interpreter walks the AST, evaluating one top-level statement at a
// time against a root environment pre-populated with the built-ins.
type Interpreter struct {
	root *ast.Environment

	Stdin  *bufio.Reader
	Stdout io.Writer
}

// New creates an Interpreter whose root environment already has every
// built-in bound, per RegisterBuiltins.
func New() *Interpreter {
	i := &Interpreter{
		root:   ast.NewEnvironment(nil),
		Stdin:  bufio.NewReader(os.Stdin),
		Stdout: os.Stdout,
	}
	RegisterBuiltins(i, i.root)
	return i
}

// Call invokes closure with the given already-evaluated arguments. It is
// exported to the package's builtins so that native-backed closures
// like `?` can re-enter user closures passed to them as arguments.
func (i *Interpreter) Call(closure *ast.Closure, args []ast.Value) (ast.Value, error) {
	if closure.IsPseudo() {
		callEnv := ast.NewEnvironment(nil)
		for idx, p := range closure.Params {
			if idx < len(args) {
				callEnv.Define(p, args[idx])
			}
		}
		return closure.Native(callEnv)
	}
	if len(args) != len(closure.Params) {
		return ast.Value{}, CreateRuntimeError(0, 0,
			fmt.Sprintf("argument count mismatch: expected %d, got %d", len(closure.Params), len(args)))
	}
	callEnv := ast.NewEnvironment(closure.Env)
	for idx, p := range closure.Params {
		callEnv.Define(p, args[idx])
	}
	return i.evalIn(closure.Body, callEnv)
}

// Run evaluates each top-level node against the root environment in
// order, halting at the first error per the interpreter's halt-on-
// first-semantic-error policy.
func (i *Interpreter) Run(nodes []ast.Node) error {
	for _, n := range nodes {
		if _, err := i.evalIn(n, i.root); err != nil {
			return err
		}
	}
	return nil
}

// frame is the ast.Evaluator that actually implements each node's
// semantics, scoped to a single environment. A fresh frame is created
// per call so that Id lookups walk the environment chain that was
// active at the point of evaluation, not some single global one.
type frame struct {
	i   *Interpreter
	env *ast.Environment
}

func (i *Interpreter) evalIn(n ast.Node, env *ast.Environment) (ast.Value, error) {
	return n.Eval(&frame{i: i, env: env})
}

// VisitId looks up name by walking the frame's environment chain
// outward. An unbound identifier is the interpreter's one recoverable-
// at-the-language-level semantic error; it still halts this run.
func (f *frame) VisitId(n *ast.Id) (ast.Value, error) {
	v, ok := f.env.Get(n.Name)
	if !ok {
		return ast.Value{}, CreateRuntimeError(n.Line, n.Column, fmt.Sprintf("identifier not found: %s", n.Name))
	}
	return v, nil
}

func (f *frame) VisitNum(n *ast.Num) (ast.Value, error) {
	return ast.Integer(n.Value), nil
}

func (f *frame) VisitDefine(n *ast.Define) (ast.Value, error) {
	v, err := f.i.evalIn(n.Expr, f.env)
	if err != nil {
		return ast.Value{}, err
	}
	f.env.Define(n.Name, v)
	return v, nil
}

func (f *frame) VisitFunc(n *ast.Func) (ast.Value, error) {
	closure := &ast.Closure{
		Params: n.Params,
		Body:   n.Body.Clone(),
		Env:    f.env,
	}
	return ast.ClosureValue(closure), nil
}

func (f *frame) VisitFunCall(n *ast.FunCall) (ast.Value, error) {
	calleeVal, err := f.i.evalIn(n.Callee, f.env)
	if err != nil {
		return ast.Value{}, err
	}

	args := make([]ast.Value, len(n.Args))
	for idx, a := range n.Args {
		v, err := f.i.evalIn(a, f.env)
		if err != nil {
			return ast.Value{}, err
		}
		args[idx] = v
	}

	if !calleeVal.IsClosure() {
		return ast.Value{}, CreateRuntimeError(n.Line, n.Column, "attempt to call a non-closure value")
	}

	result, err := f.i.Call(calleeVal.Closure, args)
	if err != nil {
		if re, ok := err.(RuntimeError); ok && re.Line == 0 && re.Column == 0 {
			re.Line, re.Column = n.Line, n.Column
			return ast.Value{}, re
		}
		return ast.Value{}, err
	}
	return result, nil
}
