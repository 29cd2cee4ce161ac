package strategies

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation matches every *InvariantError.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrDuplicateName matches every *DuplicateNameError.
	ErrDuplicateName = errors.New("duplicate strategy name")
	// ErrNotInitialized is returned by Current before Init.
	ErrNotInitialized = errors.New("strategy list not initialized")
	// ErrAlreadyInitialized is returned by Init when a list is installed.
	// Call Reset first to rebuild.
	ErrAlreadyInitialized = errors.New("strategy list already initialized")
)

// Invariant is a rule every StrategyConfig satisfies.
type Invariant int

const (
	// InvariantRequired covers required scalar fields (type, symbols).
	InvariantRequired Invariant = iota
	// InvariantPoolIndex: coin_id is set if and only if is_3crv is not.
	InvariantPoolIndex
	// InvariantAddress: every address is a valid EVM address.
	InvariantAddress
	// InvariantUniqueName: names are unique across the list.
	InvariantUniqueName
	// InvariantLeverage: leverage_factor is positive.
	InvariantLeverage
	// InvariantFarmTokens: farm_tokens is not empty.
	InvariantFarmTokens
	// InvariantChain: both registries have a table for the chain.
	InvariantChain
)

func (i Invariant) String() string {
	switch i {
	case InvariantRequired:
		return "required field"
	case InvariantPoolIndex:
		return "exactly one of coin_id and is_3crv"
	case InvariantAddress:
		return "valid address"
	case InvariantUniqueName:
		return "unique name"
	case InvariantLeverage:
		return "positive leverage factor"
	case InvariantFarmTokens:
		return "non-empty farm tokens"
	case InvariantChain:
		return "chain known to both registries"
	default:
		return fmt.Sprintf("Invariant(%d)", int(i))
	}
}

// InvariantError reports a single violated rule on a single field.
type InvariantError struct {
	Invariant Invariant
	Field     string
	Reason    string
	// Err is the underlying cause, if any.
	Err error
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("%s violated: %s: %s", e.Invariant, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func violation(inv Invariant, field, reason string) *InvariantError {
	return &InvariantError{Invariant: inv, Field: field, Reason: reason}
}

// EntryError locates a failure at one literal entry.
type EntryError struct {
	// Index is the position of the entry across all sources.
	Index int
	// Source names where the entry came from; empty for a bare Build.
	Source string
	// SourceIndex is the position of the entry within Source.
	SourceIndex int
	Underlying  string
	RiskAsset   string
	Err         error
}

func (e *EntryError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("strategy entry %d (%s/%s): %v", e.Index, e.Underlying, e.RiskAsset, e.Err)
	}
	return fmt.Sprintf("strategy entry %d of %s (%s/%s): %v", e.SourceIndex, e.Source, e.Underlying, e.RiskAsset, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// DuplicateNameError reports two entries that generate the same name.
type DuplicateNameError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("strategy entries %d and %d: %s violated: name '%s' is generated twice",
		e.First, e.Second, InvariantUniqueName, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}
