package outline

import "fmt"

// StructuralViolation reports an edit that would break a document invariant.
type StructuralViolation struct {
	Op     string
	Index  int
	Reason string
}

func (e StructuralViolation) Error() string {
	return fmt.Sprintf("structural violation: %s at %d: %s", e.Op, e.Index, e.Reason)
}

func violation(op string, i int, format string, args ...any) error {
	return StructuralViolation{Op: op, Index: i, Reason: fmt.Sprintf(format, args...)}
}
