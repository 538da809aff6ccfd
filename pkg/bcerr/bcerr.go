// Package bcerr defines the error taxonomy shared by every stage of the
// decompiler pipeline: primitive decoding, opcode decoding, block
// resolution, and prototype/dump loading.
package bcerr

import (
	"errors"
	"fmt"
)

// Kind identifies which class of failure occurred. The decoding, resolving
// and loading stages report failures as a *Error with one of these kinds
// rather than panicking; pkg/graph and the lifter's unhandled-opcode case
// return plain errors instead.
type Kind int

const (
	// KindIO covers underlying stream read failures or truncated input.
	KindIO Kind = iota
	// KindInvalidULeb128 covers a malformed variable-length integer.
	KindInvalidULeb128
	// KindInvalidHeaderBytes covers a wrong magic, wrong version, unknown
	// flag bits, or a rejected flag combination.
	KindInvalidHeaderBytes
	// KindUnknownInsOpcode covers an opcode byte outside the known table.
	KindUnknownInsOpcode
	// KindUnexpectedInsOpcode covers an opcode encountered in a position
	// the resolver does not support (e.g. JITERL, JFORL).
	KindUnexpectedInsOpcode
	// KindInvalidPriValue covers a primitive operand not in {0, 1, 2}.
	KindInvalidPriValue
	// KindInvalidJumpTarget covers a resolved jump offset outside the
	// bounds of the instruction stream.
	KindInvalidJumpTarget
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IO"
	case KindInvalidULeb128:
		return "InvalidULeb128"
	case KindInvalidHeaderBytes:
		return "InvalidHeaderBytes"
	case KindUnknownInsOpcode:
		return "UnknownInsOpcode"
	case KindUnexpectedInsOpcode:
		return "UnexpectedInsOpcode"
	case KindInvalidPriValue:
		return "InvalidPriValue"
	case KindInvalidJumpTarget:
		return "InvalidJumpTarget"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type of the decoding pipeline. Prototype is the index of the prototype being processed when
// the failure occurred, or -1 if the failure is not prototype-scoped (e.g.
// a dump header failure).
type Error struct {
	Kind      Kind
	Prototype int
	Reason    string
	Cause     error
}

func (e *Error) Error() string {
	loc := ""
	if e.Prototype >= 0 {
		loc = fmt.Sprintf(" (prototype %d)", e.Prototype)
	}
	if e.Reason != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s%s: %s: %v", e.Kind, loc, e.Reason, e.Cause)
		}
		return fmt.Sprintf("%s%s: %s", e.Kind, loc, e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %v", e.Kind, loc, e.Cause)
	}
	return fmt.Sprintf("%s%s", e.Kind, loc)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a dump-scoped error (not attributable to a single prototype).
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Prototype: -1, Reason: reason}
}

// Wrap builds a dump-scoped error wrapping an underlying cause.
func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Prototype: -1, Reason: reason, Cause: cause}
}

// InProto attaches a prototype index to an existing error, if it is one of
// ours; otherwise it wraps cause in a fresh KindIO error scoped to proto.
func InProto(proto int, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		cp := *be
		cp.Prototype = proto
		return &cp
	}
	return &Error{Kind: KindIO, Prototype: proto, Cause: err}
}
