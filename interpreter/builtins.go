package interpreter

import (
	"fmt"

	"github.com/MaxXSoft/Ionia/ast"
)

// RegisterBuiltins binds Ionia's ~24-function standard library into
// env as pseudo-closures, each backed by a Native callback rather than
// an AST body. Every Native reads its arguments out of a fresh call
// frame in which they're already bound by name, in the same
// left-to-right order a user sees in source.
func RegisterBuiltins(i *Interpreter, env *ast.Environment) {
	def := func(name string, params []string, fn func(frame *ast.Environment) (ast.Value, error)) {
		env.Define(name, ast.ClosureValue(&ast.Closure{Params: params, Native: fn}))
	}

	def("<<<", []string{"x"}, i.builtinPrint)
	def(">>>", nil, i.builtinRead)
	def("?", []string{"cond", "then", "else"}, i.builtinCond)
	def("is", []string{"lhs", "rhs"}, builtinIs)

	def("eq", []string{"lhs", "rhs"}, cmp(func(a, b int32) bool { return a == b }))
	def("neq", []string{"lhs", "rhs"}, cmp(func(a, b int32) bool { return a != b }))
	def("lt", []string{"lhs", "rhs"}, cmp(func(a, b int32) bool { return a < b }))
	def("le", []string{"lhs", "rhs"}, cmp(func(a, b int32) bool { return a <= b }))
	def("gt", []string{"lhs", "rhs"}, cmp(func(a, b int32) bool { return a > b }))
	def("ge", []string{"lhs", "rhs"}, cmp(func(a, b int32) bool { return a >= b }))

	def("+", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a + b, nil }))
	def("-", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a - b, nil }))
	def("*", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a * b, nil }))
	def("/", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) {
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	}))
	def("%", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) {
		if b == 0 {
			return 0, fmt.Errorf("modulus by zero")
		}
		return a % b, nil
	}))
	def("&", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a & b, nil }))
	def("|", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a | b, nil }))
	def("^", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a ^ b, nil }))
	def("<<", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a << uint32(b), nil }))
	def(">>", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return a >> uint32(b), nil }))
	def("&&", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return boolInt(a != 0 && b != 0), nil }))
	def("||", []string{"lhs", "rhs"}, binop(func(a, b int32) (int32, error) { return boolInt(a != 0 || b != 0), nil }))

	def("~", []string{"x"}, unop(func(a int32) int32 { return ^a }))
	def("!", []string{"x"}, unop(func(a int32) int32 { return boolInt(a == 0) }))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// builtinPrint implements `<<<`: print its argument (an integer in
// decimal, or a closure in the "<function at: ...>" form ast.Value's
// String already produces) and return it unchanged.
func (i *Interpreter) builtinPrint(frame *ast.Environment) (ast.Value, error) {
	v, _ := frame.Get("x")
	fmt.Fprint(i.Stdout, v.String())
	return v, nil
}

// builtinRead implements `>>>`: block on i.Stdin for one decimal
// integer and return it.
func (i *Interpreter) builtinRead(frame *ast.Environment) (ast.Value, error) {
	var n int32
	if _, err := fmt.Fscan(i.Stdin, &n); err != nil {
		return ast.Value{}, CreateRuntimeError(0, 0, fmt.Sprintf("'>>>' failed to read an integer: %v", err))
	}
	return ast.Integer(n), nil
}

// builtinCond implements `?`: evaluate cond, then re-enter the
// Interpreter on whichever of then/else it selects, calling it with no
// arguments as the grammar requires.
func (i *Interpreter) builtinCond(frame *ast.Environment) (ast.Value, error) {
	cond, _ := frame.Get("cond")
	then, _ := frame.Get("then")
	els, _ := frame.Get("else")
	if cond.IsClosure() {
		return ast.Value{}, CreateRuntimeError(0, 0, "'?' condition must be an integer")
	}
	if !then.IsClosure() || !els.IsClosure() {
		return ast.Value{}, CreateRuntimeError(0, 0, "'?' branches must be closures")
	}
	branch := els
	if cond.Int != 0 {
		branch = then
	}
	return i.Call(branch.Closure, nil)
}

// builtinIs implements `is`: compare lhs and rhs by ast.Value.Equal.
func builtinIs(frame *ast.Environment) (ast.Value, error) {
	lhs, _ := frame.Get("lhs")
	rhs, _ := frame.Get("rhs")
	return ast.Integer(boolInt(lhs.Equal(rhs))), nil
}

// cmp builds a Native for a 2-arg integer comparison builtin.
func cmp(f func(lhs, rhs int32) bool) func(frame *ast.Environment) (ast.Value, error) {
	return func(frame *ast.Environment) (ast.Value, error) {
		lhs, _ := frame.Get("lhs")
		rhs, _ := frame.Get("rhs")
		if lhs.IsClosure() || rhs.IsClosure() {
			return ast.Value{}, CreateRuntimeError(0, 0, "comparison operands must be integers")
		}
		return ast.Integer(boolInt(f(lhs.Int, rhs.Int))), nil
	}
}

// binop builds a Native for a 2-arg integer arithmetic/bitwise builtin.
func binop(f func(lhs, rhs int32) (int32, error)) func(frame *ast.Environment) (ast.Value, error) {
	return func(frame *ast.Environment) (ast.Value, error) {
		lhs, _ := frame.Get("lhs")
		rhs, _ := frame.Get("rhs")
		if lhs.IsClosure() || rhs.IsClosure() {
			return ast.Value{}, CreateRuntimeError(0, 0, "operator operands must be integers")
		}
		result, err := f(lhs.Int, rhs.Int)
		if err != nil {
			return ast.Value{}, CreateRuntimeError(0, 0, err.Error())
		}
		return ast.Integer(result), nil
	}
}

// unop builds a Native for a 1-arg integer negation builtin.
func unop(f func(a int32) int32) func(frame *ast.Environment) (ast.Value, error) {
	return func(frame *ast.Environment) (ast.Value, error) {
		v, _ := frame.Get("x")
		if v.IsClosure() {
			return ast.Value{}, CreateRuntimeError(0, 0, "unary operator operand must be an integer")
		}
		return ast.Integer(f(v.Int)), nil
	}
}
