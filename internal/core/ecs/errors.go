package ecs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrEntityExists     = errors.New("entity already exists")
	ErrUnknownKind      = errors.New("unknown component kind")
	ErrNotRestorable    = errors.New("component kind cannot be restored")
	ErrMissingComponent = errors.New("missing component")
)

// MissingComponentError lists the kinds an entity lacks.
type MissingComponentError struct {
	Entity  EntityID
	Missing []Kind
}

func (e *MissingComponentError) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = string(k)
	}
	return fmt.Sprintf("entity %d: missing components: %s", e.Entity, strings.Join(names, ", "))
}

func (e *MissingComponentError) Unwrap() error {
	return ErrMissingComponent
}
