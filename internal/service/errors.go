package service

import (
	"errors"
	"fmt"

	"cookstove_tracker/internal/validation"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a client-safe message and unwraps to its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// checkStruct runs the tag rules on v and reports failures as ErrValidation.
func checkStruct(v any) error {
	err := validation.Struct(v)
	var verr *validation.Error
	if errors.As(err, &verr) {
		return newError(ErrValidation, "%s", verr.Error())
	}
	return err
}
