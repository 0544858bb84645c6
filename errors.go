package statenet

import (
	"errors"
	"fmt"
)

// ErrUnknownNode is returned if a node ID has not been issued by the builder of a network.
var ErrUnknownNode = errors.New("unknown node")

// ErrNotInputNode is returned when trying to stage a value for a calculation node.
var ErrNotInputNode = errors.New("not an input node")

// ErrBuilderFinalized is returned if a builder is used after Build() has been called.
var ErrBuilderFinalized = errors.New("builder already finalized")

// ErrInvalidCalculation is returned for calculation nodes which cannot be constructed,
// e.g. because of a missing function.
var ErrInvalidCalculation = errors.New("invalid calculation")

// ErrInvalidValue is returned if an input node's validator rejects a value.
var ErrInvalidValue = errors.New("invalid value")

// ErrDuplicateName is returned if two nodes of a builder are given the same name.
var ErrDuplicateName = errors.New("duplicate node name")

// ErrTypeMismatch is reported by typed helpers if a value does not have the expected type.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrCalculationPanic is the cause of a CalculationError for a function which panicked.
var ErrCalculationPanic = errors.New("calculation panicked")

// CalculationError is returned from Build and Commit if a calculation function fails.
type CalculationError struct {
	Node  NodeID // the node whose calculation failed
	Name  string // name of the failing node
	Cause error  // error returned by the function
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("statenet: calculation of node %s (%s) failed: %v", e.Node, e.Name, e.Cause)
}

func (e *CalculationError) Unwrap() error {
	return e.Cause
}
