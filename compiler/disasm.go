package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders b as human-readable text: the global-function
// table, then every instruction in the code section with a "funN:"
// label preceding the first instruction at any pc_id's target offset.
// It is a pure pretty-printer over the bytecode schema; it never
// re-derives semantics the VM doesn't already define.
func Disassemble(b *Bytecode) string {
	var out strings.Builder

	if len(b.Globals) > 0 {
		out.WriteString("Global Functions (GFT):\n")
		for _, g := range b.Globals {
			name := "?"
			if int(g.SymID) < len(b.Symbols) {
				name = b.Symbols[g.SymID]
			}
			fmt.Fprintf(&out, "  %s, arg.size = %d\n", name, g.ArgCount)
		}
	}

	pc := 0
	for pc < len(b.Code) {
		for i, target := range b.PCTable {
			if int(target) == pc {
				fmt.Fprintf(&out, "\nfun%d:\n", i)
			}
		}
		op, operand, length := DecodeAt(b.Code, pc)
		fmt.Fprintf(&out, "  %-6s", op.String())
		switch op {
		case GET, SET:
			name := "?"
			if int(operand) < len(b.Symbols) {
				name = b.Symbols[operand]
			}
			fmt.Fprintf(&out, "%s\n", name)
		case CNST:
			fmt.Fprintf(&out, "%d\n", SignExtend28(operand))
		case CNSH:
			fmt.Fprintf(&out, "0x%X\n", operand)
		default:
			out.WriteString("\n")
		}
		pc += length
	}
	return out.String()
}
