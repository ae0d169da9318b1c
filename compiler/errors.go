package compiler

import "fmt"

// CompileError is a programmer-facing error raised while emitting
// bytecode: currently only an unresolved label left over at
// finalization time, which per the spec is a programmer error rather
// than a user-facing one.
type CompileError struct {
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("error(compiler): %s", e.Message)
}
