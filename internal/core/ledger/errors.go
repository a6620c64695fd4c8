package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrAllocationRejected = errors.New("allocation rejected")
	ErrNotFound           = errors.New("allocation not found")
	ErrNegativeTotal      = errors.New("total would become negative")
	ErrInvalidAmount      = errors.New("invalid amount")
)

// Error describes a failed ledger operation. It unwraps to one of the
// sentinel errors above.
type Error struct {
	Op           string
	AllocationID int64
	Cause        error
}

func (e *Error) Error() string {
	if e.AllocationID != 0 {
		return fmt.Sprintf("ledger %s #%d: %v", e.Op, e.AllocationID, e.Cause)
	}
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func opError(op string, id int64, cause error) error {
	return &Error{Op: op, AllocationID: id, Cause: cause}
}
