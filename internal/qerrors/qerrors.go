// Package qerrors defines the error taxonomy shared by the catalog,
// expression evaluator, operators, and plan translator.
package qerrors

import (
	"errors"
	"fmt"
)

// Kind identifies which part of the taxonomy an error belongs to.
type Kind int

const (
	IOError Kind = iota
	SchemaError
	PlanError
	TypeError
	DivideByZero
	UnknownColumn
	UnsupportedOperator
)

func (k Kind) String() string {
	switch k {
	case IOError:
		return "IOError"
	case SchemaError:
		return "SchemaError"
	case PlanError:
		return "PlanError"
	case TypeError:
		return "TypeError"
	case DivideByZero:
		return "DivideByZero"
	case UnknownColumn:
		return "UnknownColumn"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	default:
		return "UnknownError"
	}
}

// Error is a taxonomy-tagged error. Callers inspect the kind with
// errors.As, the way cranedb's own packages wrap lower-level failures.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error carrying the given kind and message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
