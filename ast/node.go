// node.go defines Ionia's closed, five-variant AST and the visitor
// interfaces that let an Interpreter and a CodeGen each operate on it
// without the ast package importing either one.
package ast

// Node is implemented by every AST variant: Id, Num, Define, Func, and
// FunCall. Eval/Emit follow the visitor pattern so that evaluation and
// compilation live in their own packages instead of on these types.
type Node interface {
	// Clone performs a structural deep copy. Required because a Func's
	// Eval produces a closure holding a clone of its body, so later
	// mutation of the source AST can't affect already-created closures.
	Clone() Node
	Eval(v Evaluator) (Value, error)
	Emit(g CodeEmitter) error
}

// Evaluator is implemented by the tree-walking interpreter.
type Evaluator interface {
	VisitId(n *Id) (Value, error)
	VisitNum(n *Num) (Value, error)
	VisitDefine(n *Define) (Value, error)
	VisitFunc(n *Func) (Value, error)
	VisitFunCall(n *FunCall) (Value, error)
}

// CodeEmitter is implemented by the bytecode code generator.
type CodeEmitter interface {
	VisitId(n *Id) error
	VisitNum(n *Num) error
	VisitDefine(n *Define) error
	VisitFunc(n *Func) error
	VisitFunCall(n *FunCall) error
}

// Id is a symbol reference.
type Id struct {
	Name   string
	Line   int32
	Column int
}

func (n *Id) Clone() Node                      { c := *n; return &c }
func (n *Id) Eval(v Evaluator) (Value, error)  { return v.VisitId(n) }
func (n *Id) Emit(g CodeEmitter) error          { return g.VisitId(n) }

// Num is a signed 32-bit integer literal.
type Num struct {
	Value  int32
	Line   int32
	Column int
}

func (n *Num) Clone() Node                     { c := *n; return &c }
func (n *Num) Eval(v Evaluator) (Value, error) { return v.VisitNum(n) }
func (n *Num) Emit(g CodeEmitter) error         { return g.VisitNum(n) }

// Define introduces a binding in the current scope. It is itself an
// expression: its value is whatever its right-hand side evaluated to,
// which lets it appear as a function body or a call argument, not just
// as a top-level statement.
type Define struct {
	Name   string
	Expr   Node
	Line   int32
	Column int
}

func (n *Define) Clone() Node {
	return &Define{Name: n.Name, Expr: n.Expr.Clone(), Line: n.Line, Column: n.Column}
}
func (n *Define) Eval(v Evaluator) (Value, error) { return v.VisitDefine(n) }
func (n *Define) Emit(g CodeEmitter) error         { return g.VisitDefine(n) }

// Func is an anonymous function literal. Params need not be unique;
// where they repeat, the last binding wins.
type Func struct {
	Params []string
	Body   Node
	Line   int32
	Column int
}

func (n *Func) Clone() Node {
	params := make([]string, len(n.Params))
	copy(params, n.Params)
	return &Func{Params: params, Body: n.Body.Clone(), Line: n.Line, Column: n.Column}
}
func (n *Func) Eval(v Evaluator) (Value, error) { return v.VisitFunc(n) }
func (n *Func) Emit(g CodeEmitter) error         { return g.VisitFunc(n) }

// FunCall is application; Callee is itself a Node so that chained
// application (f(x)(y)) is just a FunCall whose Callee is another
// FunCall.
type FunCall struct {
	Callee Node
	Args   []Node
	Line   int32
	Column int
}

func (n *FunCall) Clone() Node {
	args := make([]Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.Clone()
	}
	return &FunCall{Callee: n.Callee.Clone(), Args: args, Line: n.Line, Column: n.Column}
}
func (n *FunCall) Eval(v Evaluator) (Value, error) { return v.VisitFunCall(n) }
func (n *FunCall) Emit(g CodeEmitter) error         { return g.VisitFunCall(n) }
