package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MaxXSoft/Ionia/compiler"
)

// ExtFunc is the calling convention for a built-in bound into the
// VM's ext environment. It pops its own arguments off vm's value
// stack. The ordinary case returns a result value with isTail=false.
// The `?` builtin is the one exception: instead of returning a value,
// it selects one of its closure arguments and returns isTail=true with
// that closure as tailTarget, asking the VM to transfer control into
// it in tail position rather than treating the builtin call as done.
type ExtFunc func(vm *VM) (result Value, tailTarget Value, isTail bool, err error)

// SymbolErrorHandler is invoked when a GET can't find its symbol in
// the current environment chain, giving an embedder one last chance
// to supply a value (e.g. a virtual global) before the VM fails with
// "not found".
type SymbolErrorHandler func(name string) (Value, bool)

// VM is Ionia's bytecode interpreter: a fetch-decode-dispatch loop
// over a loaded Bytecode, a value register, a value stack for
// argument passing, and an environment stack whose frames chain
// lexically through captured closures rather than through call order.
type VM struct {
	bc  *compiler.Bytecode
	pc  int
	reg Value

	vals  Stack
	envs  []*Env
	ext   *Env // root "ext" environment: every builtin bound as a closure
	root  *Env // user root environment, outer = ext, hosts global defines

	builtinIDs map[string]int32
	extFuncs   map[int32]ExtFunc
	nextExtID  int32

	symErrHandler SymbolErrorHandler

	Stdin  *bufio.Reader
	Stdout io.Writer
}

// New creates a VM whose ext environment already has every builtin
// bound, ready to Load a Bytecode and Run it.
func New() *VM {
	vm := &VM{
		builtinIDs: make(map[string]int32),
		extFuncs:   make(map[int32]ExtFunc),
		nextExtID:  -1,
		Stdin:      bufio.NewReader(os.Stdin),
		Stdout:     os.Stdout,
	}
	vm.ext = newEnv(nil)
	vm.root = newEnv(vm.ext)
	vm.registerBuiltins()
	return vm
}

// SetSymbolErrorHandler installs h, per the spec's GET-failure hook.
func (vm *VM) SetSymbolErrorHandler(h SymbolErrorHandler) {
	vm.symErrHandler = h
}

// Load prepares the VM to execute bc from its first instruction. The
// user root environment (and hence any global defines already made
// from a prior Load) persists across calls, so a REPL can Load one
// compiled chunk after another and see earlier definitions.
func (vm *VM) Load(bc *compiler.Bytecode) {
	vm.bc = bc
	vm.pc = 0
	vm.reg = Value{}
	vm.vals = Stack{}
	vm.envs = []*Env{vm.root}

	for id, name := range bc.Symbols {
		if builtinID, ok := vm.builtinIDs[name]; ok {
			vm.ext.set(uint32(id), Value{Int: builtinID, Env: vm.ext})
		}
	}
}

func (vm *VM) topEnv() *Env {
	return vm.envs[len(vm.envs)-1]
}

func (vm *VM) errf(format string, args ...any) error {
	return RuntimeError{PC: vm.pc, Message: fmt.Sprintf(format, args...)}
}

func (vm *VM) symbolName(id uint32) string {
	if int(id) < len(vm.bc.Symbols) {
		return vm.bc.Symbols[id]
	}
	return "?"
}

// Run executes the loaded bytecode from its current pc to completion:
// the top-level RET (envs depth back to 1), a return to a negative
// ret_pc (the sentinel CallGlobal gives its frame), or a semantic error.
func (vm *VM) Run() error {
	for {
		if vm.pc < 0 || vm.pc >= len(vm.bc.Code) {
			return nil
		}
		op, operand, length := compiler.DecodeAt(vm.bc.Code, vm.pc)

		switch op {
		case compiler.GET:
			v, ok := vm.topEnv().get(operand)
			if !ok && vm.symErrHandler != nil {
				v, ok = vm.symErrHandler(vm.symbolName(operand))
			}
			if !ok {
				return vm.errf("symbol %q not found", vm.symbolName(operand))
			}
			vm.reg = v
			vm.pc += length

		case compiler.SET:
			vm.topEnv().set(operand, vm.reg)
			vm.pc += length

		case compiler.FUN:
			vm.reg = Value{Int: vm.reg.Int, Env: vm.topEnv()}
			vm.pc += length

		case compiler.CNST:
			vm.reg = Value{Int: compiler.SignExtend28(operand)}
			vm.pc += length

		case compiler.CNSH:
			vm.reg = Value{Int: vm.reg.Int | int32(operand<<4)}
			vm.pc += length

		case compiler.PUSH:
			vm.vals.Push(vm.reg)
			vm.pc += length

		case compiler.POP:
			v, ok := vm.vals.Pop()
			if !ok {
				return vm.errf("pop from empty stack")
			}
			vm.reg = v
			vm.pc += length

		case compiler.RET:
			if len(vm.envs) > 1 {
				retPC := vm.topEnv().retPC
				vm.envs = vm.envs[:len(vm.envs)-1]
				vm.pc = retPC
			} else {
				return nil
			}

		case compiler.CALL:
			if err := vm.doCall(length); err != nil {
				return err
			}

		case compiler.TCAL:
			if err := vm.doTailCall(length); err != nil {
				return err
			}

		default:
			return vm.errf("unknown opcode %v", op)
		}
	}
}

// doCall implements CALL: push a new frame (or a throwaway one for an
// external function) and transfer control.
func (vm *VM) doCall(length int) error {
	if !vm.reg.IsClosure() {
		return vm.errf("calling a non-function")
	}
	closure := vm.reg

	if fn, ok := vm.extFuncs[closure.Int]; ok {
		frame := newEnv(nil)
		frame.retPC = vm.pc + length
		vm.envs = append(vm.envs, frame)

		result, tailTarget, isTail, err := fn(vm)
		if err != nil {
			return err
		}
		if isTail {
			return vm.tailEnter(tailTarget, frame)
		}
		vm.envs = vm.envs[:len(vm.envs)-1]
		vm.reg = result
		vm.pc = frame.retPC
		return nil
	}

	pcID := closure.Int
	if pcID < 0 || int(pcID) >= len(vm.bc.PCTable) {
		return vm.errf("invalid function pc_id %d", pcID)
	}
	frame := newEnv(closure.Env)
	frame.retPC = vm.pc + length
	vm.envs = append(vm.envs, frame)
	vm.pc = int(vm.bc.PCTable[pcID])
	return nil
}

// doTailCall implements TCAL: replace the top frame with a fresh one
// that inherits its ret_pc, rather than pushing a new one, so a
// tail-recursive user program runs in O(1) environment-stack depth.
// The replaced frame itself is left untouched, since closures created
// in it may still refer to it.
func (vm *VM) doTailCall(length int) error {
	if !vm.reg.IsClosure() {
		return vm.errf("calling a non-function")
	}
	closure := vm.reg
	frame := newEnv(nil)
	frame.retPC = vm.topEnv().retPC
	vm.envs[len(vm.envs)-1] = frame

	if fn, ok := vm.extFuncs[closure.Int]; ok {
		result, tailTarget, isTail, err := fn(vm)
		if err != nil {
			return err
		}
		if isTail {
			return vm.tailEnter(tailTarget, frame)
		}
		retPC := frame.retPC
		vm.envs = vm.envs[:len(vm.envs)-1]
		vm.reg = result
		vm.pc = retPC
		return nil
	}

	pcID := closure.Int
	if pcID < 0 || int(pcID) >= len(vm.bc.PCTable) {
		return vm.errf("invalid function pc_id %d", pcID)
	}
	frame.outer = closure.Env
	vm.pc = int(vm.bc.PCTable[pcID])
	return nil
}

// tailEnter is the re-entrant tail-call mechanism the `?` builtin uses
// to transfer control into one of its closure arguments mid-dispatch.
// frame is already the current top-of-stack frame (a throwaway one
// CALL just pushed, or the fresh one TCAL put in place of the caller's
// frame); its ret_pc already
// points past the original CALL/TCAL instruction, so repurposing it in
// place — rather than pushing yet another frame — makes the re-entered
// body's own RET unwind to exactly the right place.
func (vm *VM) tailEnter(target Value, frame *Env) error {
	if !target.IsClosure() {
		return vm.errf("'?' branch must be a closure")
	}
	if fn, ok := vm.extFuncs[target.Int]; ok {
		vm.envs = vm.envs[:len(vm.envs)-1]
		result, nested, isTail, err := fn(vm)
		if err != nil {
			return err
		}
		if isTail {
			next := newEnv(nil)
			next.retPC = frame.retPC
			vm.envs = append(vm.envs, next)
			return vm.tailEnter(nested, next)
		}
		vm.reg = result
		vm.pc = frame.retPC
		return nil
	}

	pcID := target.Int
	if pcID < 0 || int(pcID) >= len(vm.bc.PCTable) {
		return vm.errf("invalid function pc_id %d", pcID)
	}
	frame.outer = target.Env
	vm.pc = int(vm.bc.PCTable[pcID])
	return nil
}

// registerAnonExtFunc binds fn under a fresh negative id with no
// symbol-table name, returning a closure Value a caller can stash
// directly into a register or env slot without Load ever needing to
// find it by name. Used for host callbacks that have no business
// occupying a slot in the bytecode's own symbol table.
func (vm *VM) registerAnonExtFunc(fn ExtFunc) Value {
	id := vm.nextExtID
	vm.nextExtID--
	vm.extFuncs[id] = fn
	return Value{Int: id, Env: vm.ext}
}

// CallGlobal invokes a `$`-prefixed global function by name with
// already-evaluated arguments, for embedders that load a bytecode
// module and then drive it externally rather than relying on its own
// top-level statements. name is matched with or without its leading
// `$`. It runs to completion on a private pc/frame context layered
// atop the persistent root environment.
func (vm *VM) CallGlobal(name string, args []Value) (Value, error) {
	full := name
	if !strings.HasPrefix(full, "$") {
		full = "$" + full
	}
	var global *compiler.GlobalFunc
	for i := range vm.bc.Globals {
		g := vm.bc.Globals[i]
		if int(g.SymID) < len(vm.bc.Symbols) && vm.bc.Symbols[g.SymID] == full {
			global = &vm.bc.Globals[i]
			break
		}
	}
	if global == nil {
		return Value{}, vm.errf("no such global function %q", name)
	}
	if len(args) != int(global.ArgCount) {
		return Value{}, vm.errf("argument count mismatch calling %q: expected %d, got %d", name, global.ArgCount, len(args))
	}

	savedPC, savedEnvs, savedReg, savedVals := vm.pc, vm.envs, vm.reg, vm.vals
	defer func() {
		vm.pc, vm.envs, vm.reg, vm.vals = savedPC, savedEnvs, savedReg, savedVals
	}()

	frame := newEnv(vm.root)
	frame.retPC = -1
	vm.envs = []*Env{frame}
	vm.vals = Stack{}
	for _, a := range args {
		vm.vals.Push(a)
	}
	// Arguments are consumed by the function prologue (POP; SET) in
	// reverse order, mirroring how the compiler packs call arguments.
	vm.pc = int(vm.bc.PCTable[global.PCID])
	if err := vm.Run(); err != nil {
		return Value{}, err
	}
	return vm.reg, nil
}
