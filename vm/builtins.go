package vm

import (
	"fmt"
)

// registerBuiltins binds every name in the ~24-function standard
// library into vm's ext environment, each under its own stable
// negative id so its bytecode-level identity survives across Loads of
// unrelated compiled programs.
func (vm *VM) registerBuiltins() {
	reg := func(name string, fn ExtFunc) {
		v := vm.registerAnonExtFunc(fn)
		vm.builtinIDs[name] = v.Int
	}

	reg("<<<", builtinPrint)
	reg(">>>", builtinRead)
	reg("?", builtinCond)
	reg("is", builtinIs)

	reg("eq", cmp(func(a, b int32) bool { return a == b }))
	reg("neq", cmp(func(a, b int32) bool { return a != b }))
	reg("lt", cmp(func(a, b int32) bool { return a < b }))
	reg("le", cmp(func(a, b int32) bool { return a <= b }))
	reg("gt", cmp(func(a, b int32) bool { return a > b }))
	reg("ge", cmp(func(a, b int32) bool { return a >= b }))

	reg("+", binop(func(a, b int32) (int32, error) { return a + b, nil }))
	reg("-", binop(func(a, b int32) (int32, error) { return a - b, nil }))
	reg("*", binop(func(a, b int32) (int32, error) { return a * b, nil }))
	reg("/", binop(func(a, b int32) (int32, error) {
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	}))
	reg("%", binop(func(a, b int32) (int32, error) {
		if b == 0 {
			return 0, fmt.Errorf("modulus by zero")
		}
		return a % b, nil
	}))
	reg("&", binop(func(a, b int32) (int32, error) { return a & b, nil }))
	reg("|", binop(func(a, b int32) (int32, error) { return a | b, nil }))
	reg("^", binop(func(a, b int32) (int32, error) { return a ^ b, nil }))
	reg("<<", binop(func(a, b int32) (int32, error) { return a << uint32(b), nil }))
	reg(">>", binop(func(a, b int32) (int32, error) { return a >> uint32(b), nil }))
	reg("&&", binop(func(a, b int32) (int32, error) { return boolInt(a != 0 && b != 0), nil }))
	reg("||", binop(func(a, b int32) (int32, error) { return boolInt(a != 0 || b != 0), nil }))

	reg("~", unop(func(a int32) int32 { return ^a }))
	reg("!", unop(func(a int32) int32 { return boolInt(a == 0) }))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// builtinPrint implements `<<<`: print its single argument (an
// integer in decimal, or a closure as its pc_id in the teacher's
// "<function at: ...>" style) to vm.Stdout, and return it unchanged.
func builtinPrint(vm *VM) (Value, Value, bool, error) {
	v, ok := vm.vals.Pop()
	if !ok {
		return Value{}, Value{}, false, vm.errf("'<<<' expects 1 argument")
	}
	if v.IsClosure() {
		fmt.Fprintf(vm.Stdout, "<function at: 0x%08X>", uint32(v.Int))
	} else {
		fmt.Fprintf(vm.Stdout, "%d", v.Int)
	}
	return v, Value{}, false, nil
}

// builtinRead implements `>>>`: block on vm.Stdin for one decimal
// integer and return it as a Value.
func builtinRead(vm *VM) (Value, Value, bool, error) {
	var n int32
	if _, err := fmt.Fscan(vm.Stdin, &n); err != nil {
		return Value{}, Value{}, false, vm.errf("'>>>' failed to read an integer: %v", err)
	}
	return Integer(n), Value{}, false, nil
}

// builtinCond implements `?`: pop (else, then, cond) — rightmost
// pushed argument popped first — and ask the VM to tail-transfer into
// whichever branch cond selects, rather than returning a value.
func builtinCond(vm *VM) (Value, Value, bool, error) {
	elseBranch, ok := vm.vals.Pop()
	if !ok {
		return Value{}, Value{}, false, vm.errf("'?' expects 3 arguments")
	}
	thenBranch, ok := vm.vals.Pop()
	if !ok {
		return Value{}, Value{}, false, vm.errf("'?' expects 3 arguments")
	}
	cond, ok := vm.vals.Pop()
	if !ok {
		return Value{}, Value{}, false, vm.errf("'?' expects 3 arguments")
	}
	if cond.IsClosure() {
		return Value{}, Value{}, false, vm.errf("'?' condition must be an integer")
	}
	if !thenBranch.IsClosure() || !elseBranch.IsClosure() {
		return Value{}, Value{}, false, vm.errf("'?' branches must be closures")
	}
	if cond.Int != 0 {
		return Value{}, thenBranch, true, nil
	}
	return Value{}, elseBranch, true, nil
}

// builtinIs implements `is`: pop (rhs, lhs) and compare by Value.Equal.
func builtinIs(vm *VM) (Value, Value, bool, error) {
	rhs, ok := vm.vals.Pop()
	if !ok {
		return Value{}, Value{}, false, vm.errf("'is' expects 2 arguments")
	}
	lhs, ok := vm.vals.Pop()
	if !ok {
		return Value{}, Value{}, false, vm.errf("'is' expects 2 arguments")
	}
	return Integer(boolInt(lhs.Equal(rhs))), Value{}, false, nil
}

// cmp builds an ExtFunc for a 2-arg integer comparison builtin. Stack
// order is (rhs, lhs) — rhs was pushed last and so pops first — but f
// is called as f(lhs, rhs) to match the source's left-to-right sense.
func cmp(f func(lhs, rhs int32) bool) ExtFunc {
	return func(vm *VM) (Value, Value, bool, error) {
		rhs, ok := vm.vals.Pop()
		if !ok {
			return Value{}, Value{}, false, vm.errf("comparison expects 2 arguments")
		}
		lhs, ok := vm.vals.Pop()
		if !ok {
			return Value{}, Value{}, false, vm.errf("comparison expects 2 arguments")
		}
		if lhs.IsClosure() || rhs.IsClosure() {
			return Value{}, Value{}, false, vm.errf("comparison operands must be integers")
		}
		return Integer(boolInt(f(lhs.Int, rhs.Int))), Value{}, false, nil
	}
}

// binop builds an ExtFunc for a 2-arg integer arithmetic/bitwise
// builtin, popping (rhs, lhs) and invoking f(lhs, rhs).
func binop(f func(lhs, rhs int32) (int32, error)) ExtFunc {
	return func(vm *VM) (Value, Value, bool, error) {
		rhs, ok := vm.vals.Pop()
		if !ok {
			return Value{}, Value{}, false, vm.errf("operator expects 2 arguments")
		}
		lhs, ok := vm.vals.Pop()
		if !ok {
			return Value{}, Value{}, false, vm.errf("operator expects 2 arguments")
		}
		if lhs.IsClosure() || rhs.IsClosure() {
			return Value{}, Value{}, false, vm.errf("operator operands must be integers")
		}
		result, err := f(lhs.Int, rhs.Int)
		if err != nil {
			return Value{}, Value{}, false, vm.errf("%v", err)
		}
		return Integer(result), Value{}, false, nil
	}
}

// unop builds an ExtFunc for a 1-arg integer negation builtin.
func unop(f func(a int32) int32) ExtFunc {
	return func(vm *VM) (Value, Value, bool, error) {
		v, ok := vm.vals.Pop()
		if !ok {
			return Value{}, Value{}, false, vm.errf("unary operator expects 1 argument")
		}
		if v.IsClosure() {
			return Value{}, Value{}, false, vm.errf("unary operator operand must be an integer")
		}
		return Integer(f(v.Int)), Value{}, false, nil
	}
}
