package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrUnknownAgent    = errors.New("unknown agent")
	ErrValidation      = errors.New("validation failed")
)
