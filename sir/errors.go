package sir

import (
	"errors"
	"fmt"
)

// ErrContractViolation is matched by every ContractViolation.
var ErrContractViolation = errors.New("contract violation")

// ErrMissingField is wrapped by a DecodeError when a required field is absent.
var ErrMissingField = errors.New("missing required field")

// ErrInvalidField is wrapped by a DecodeError when a field has the wrong type.
var ErrInvalidField = errors.New("invalid field")

// A ContractViolation reports input that the transition rule cannot be
// computed on, such as an empty population or a rate vector that is shorter
// than the age groups it is indexed with.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrContractViolation, e.Reason)
}

// Is makes errors.Is(err, ErrContractViolation) hold.
func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}

func violation(op, format string, args ...any) error {
	return &ContractViolation{
		Op:     op,
		Reason: fmt.Sprintf(format, args...),
	}
}

// A DecodeError reports a record that cannot be turned into a typed value.
type DecodeError struct {
	Record string
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %v", e.Record, e.Err)
	}

	return fmt.Sprintf("decode %s: field %q: %v", e.Record, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
