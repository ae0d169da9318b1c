// codegen.go implements CodeGen, Ionia's bytecode emitter. CodeGen
// satisfies ast.CodeEmitter, so a parsed program compiles by calling
// Node.Emit(codeGen) once per top-level statement, then Finish to
// drain the function-body queue and assemble the bytecode file.
package compiler

import (
	"fmt"
	"strings"

	"github.com/MaxXSoft/Ionia/ast"
)

// pendingFunc is a queued function body awaiting code generation. A
// Func literal enqueues one of these instead of emitting its body
// inline, so that the body's code lands after the top-level program's
// terminal RET and can itself enqueue further nested functions.
type pendingFunc struct {
	label  string
	pcID   uint32
	name   string // global name, stamped by the enclosing Define, if any
	params []string
	body   ast.Node
}

// CodeGen assembles one function's worth of bytecode at a time into a
// shared buffer, interning symbols and tracking label placeholders so
// that a Func literal compiled before its body is known can still be
// called by pc_id.
type CodeGen struct {
	symbols  []string
	symIndex map[string]uint32

	pcTable    []uint32
	resolved   map[string]uint32
	unresolved map[string]uint32

	globals []GlobalFunc
	code    []byte

	lastOp     Opcode
	lastOpPos  int
	lastSetSym uint32

	pending      []*pendingFunc
	labelCounter int
}

// NewCodeGen creates an empty CodeGen ready to compile a program.
func NewCodeGen() *CodeGen {
	return &CodeGen{
		symIndex:   make(map[string]uint32),
		resolved:   make(map[string]uint32),
		unresolved: make(map[string]uint32),
	}
}

// symbolID interns name, returning its existing index (looked up
// through symIndex) or appending it at the next free index.
func (cg *CodeGen) symbolID(name string) uint32 {
	if id, ok := cg.symIndex[name]; ok {
		return id
	}
	id := uint32(len(cg.symbols))
	cg.symbols = append(cg.symbols, name)
	cg.symIndex[name] = id
	return id
}

func (cg *CodeGen) emitShort(op Opcode) {
	cg.lastOpPos = len(cg.code)
	cg.code = append(cg.code, EncodeShort(op))
	cg.lastOp = op
}

func (cg *CodeGen) emitLong(op Opcode, operand uint32) {
	cg.lastOpPos = len(cg.code)
	b := EncodeLong(op, operand)
	cg.code = append(cg.code, b[:]...)
	cg.lastOp = op
}

func (cg *CodeGen) emitSet(name string) {
	id := cg.symbolID(name)
	cg.emitLong(SET, id)
	cg.lastSetSym = id
}

// reserveLabel returns the pc_id for label, allocating a placeholder
// table slot and recording the label as unresolved if this is the
// first reference to it.
func (cg *CodeGen) reserveLabel(label string) uint32 {
	if id, ok := cg.resolved[label]; ok {
		return id
	}
	if id, ok := cg.unresolved[label]; ok {
		return id
	}
	id := uint32(len(cg.pcTable))
	cg.pcTable = append(cg.pcTable, 0)
	cg.unresolved[label] = id
	return id
}

// placeLabel backfills label's pc_id with the current code offset,
// either resolving a previously reserved forward reference or
// allocating a fresh entry if nothing referenced it yet.
func (cg *CodeGen) placeLabel(label string) {
	if id, ok := cg.unresolved[label]; ok {
		cg.pcTable[id] = uint32(len(cg.code))
		cg.resolved[label] = id
		delete(cg.unresolved, label)
		return
	}
	id := uint32(len(cg.pcTable))
	cg.pcTable = append(cg.pcTable, uint32(len(cg.code)))
	cg.resolved[label] = id
}

// genReturn is the smart-return peephole: a trailing CALL is rewritten
// in place to TCAL instead of following it with a RET, since a call in
// tail position can reuse its caller's frame.
func (cg *CodeGen) genReturn() {
	if cg.lastOp == CALL {
		cg.code[cg.lastOpPos] = EncodeShort(TCAL)
		cg.lastOp = TCAL
		return
	}
	cg.emitShort(RET)
}

// VisitId is the smart-get peephole: Id(n)'s GET is suppressed when the
// immediately preceding instruction was SET on the same symbol, since
// the value is still sitting in the value register.
func (cg *CodeGen) VisitId(n *ast.Id) error {
	id := cg.symbolID(n.Name)
	if cg.lastOp == SET && cg.lastSetSym == id {
		return nil
	}
	cg.emitLong(GET, id)
	return nil
}

func (cg *CodeGen) VisitNum(n *ast.Num) error {
	low, high, needHigh := splitImmediate(n.Value)
	cg.emitLong(CNST, low)
	if needHigh {
		cg.emitLong(CNSH, high)
	}
	return nil
}

func (cg *CodeGen) VisitDefine(n *ast.Define) error {
	if err := n.Expr.Emit(cg); err != nil {
		return err
	}
	if _, ok := n.Expr.(*ast.Func); ok && len(cg.pending) > 0 {
		cg.pending[len(cg.pending)-1].name = n.Name
	}
	cg.emitSet(n.Name)
	return nil
}

func (cg *CodeGen) VisitFunc(n *ast.Func) error {
	label := fmt.Sprintf(":func-%d", cg.labelCounter)
	cg.labelCounter++
	pcID := cg.reserveLabel(label)
	cg.pending = append(cg.pending, &pendingFunc{
		label:  label,
		pcID:   pcID,
		params: append([]string(nil), n.Params...),
		body:   n.Body.Clone(),
	})
	cg.emitLong(CNST, pcID&immMask)
	cg.emitShort(FUN)
	return nil
}

func (cg *CodeGen) VisitFunCall(n *ast.FunCall) error {
	for _, a := range n.Args {
		if err := a.Emit(cg); err != nil {
			return err
		}
		cg.emitShort(PUSH)
	}
	if err := n.Callee.Emit(cg); err != nil {
		return err
	}
	cg.emitShort(CALL)
	return nil
}

// Compile lowers a full program (the parser's top-level node slice)
// into assembled bytecode: each statement compiles in order, then a
// terminal RET closes out root execution, then the pending
// function-body queue drains to a fixpoint (compiling one function's
// body may itself enqueue nested functions).
func (cg *CodeGen) Compile(nodes []ast.Node) (*Bytecode, error) {
	for _, n := range nodes {
		if err := n.Emit(cg); err != nil {
			return nil, err
		}
	}
	cg.emitShort(RET)

	for len(cg.pending) > 0 {
		pf := cg.pending[0]
		cg.pending = cg.pending[1:]

		cg.placeLabel(pf.label)
		for i := len(pf.params) - 1; i >= 0; i-- {
			cg.emitShort(POP)
			cg.emitSet(pf.params[i])
		}
		if err := pf.body.Emit(cg); err != nil {
			return nil, err
		}
		cg.genReturn()

		if strings.HasPrefix(pf.name, "$") {
			symID := cg.symbolID(pf.name)
			cg.globals = append(cg.globals, GlobalFunc{
				SymID:    symID,
				PCID:     pf.pcID,
				ArgCount: uint8(len(pf.params)),
			})
		}
	}

	if len(cg.unresolved) != 0 {
		return nil, CompileError{Message: "unresolved function label at bytecode-generation time"}
	}

	return &Bytecode{
		Symbols: cg.symbols,
		PCTable: cg.pcTable,
		Globals: cg.globals,
		Code:    cg.code,
	}, nil
}

// Compile is a convenience entry point: it drives a fresh CodeGen over
// nodes and returns the assembled Bytecode.
func Compile(nodes []ast.Node) (*Bytecode, error) {
	return NewCodeGen().Compile(nodes)
}
