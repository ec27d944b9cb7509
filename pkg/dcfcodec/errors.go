package dcfcodec

import (
	"errors"
	"fmt"
)

// Kind is the closed error taxonomy from spec §7.
type Kind uint8

const (
	KindOK Kind = iota
	KindBufferFull
	KindAllocFail
	KindTooLarge
	KindDepthExceeded
	KindInvalidMagic
	KindVersionMismatch
	KindTruncated
	KindCRCMismatch
	KindInvalidType
	KindOverflow
	KindMalformed
	KindNullPtr
	KindInvalidArg
	KindInternal
	KindNotFound
	KindTypeMismatch
)

// String renders a human-readable error kind, mirroring dcf_ser_error_str.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "success"
	case KindBufferFull:
		return "buffer full"
	case KindAllocFail:
		return "allocation failed"
	case KindTooLarge:
		return "data too large"
	case KindDepthExceeded:
		return "max nesting depth exceeded"
	case KindInvalidMagic:
		return "invalid magic number"
	case KindVersionMismatch:
		return "protocol version mismatch"
	case KindTruncated:
		return "truncated message"
	case KindCRCMismatch:
		return "CRC checksum mismatch"
	case KindInvalidType:
		return "invalid type tag"
	case KindOverflow:
		return "value overflow"
	case KindMalformed:
		return "malformed data"
	case KindNullPtr:
		return "null pointer"
	case KindInvalidArg:
		return "invalid argument"
	case KindInternal:
		return "internal error"
	case KindNotFound:
		return "not found"
	case KindTypeMismatch:
		return "type mismatch"
	default:
		return "unknown error"
	}
}

// CodecError is the error value returned by fallible codec operations. It
// carries Kind so callers can branch on error class with errors.As instead
// of string matching, while still satisfying errors.Is against the sentinel
// vars below.
type CodecError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dcfcodec: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("dcfcodec: %s: %s", e.Op, e.Kind)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func (e *CodecError) Is(target error) bool {
	sentinel, ok := target.(*sentinelError)
	if !ok {
		return false
	}
	return e.Kind == sentinel.kind
}

// sentinelError lets callers write errors.Is(err, dcfcodec.ErrTruncated)
// without exposing an exported concrete type per kind.
type sentinelError struct {
	kind Kind
}

func (s *sentinelError) Error() string { return s.kind.String() }

// Is compares by Kind so that every sentinelError/CodecError produced for
// the same Kind satisfies errors.Is against each other, regardless of
// whether they are the same allocation.
func (s *sentinelError) Is(target error) bool {
	switch t := target.(type) {
	case *sentinelError:
		return s.kind == t.kind
	case *CodecError:
		return s.kind == t.Kind
	default:
		return false
	}
}

func newSentinel(k Kind) error { return &sentinelError{kind: k} }

// Sentinel errors, one per Kind, for errors.Is comparisons.
var (
	ErrBufferFull      = newSentinel(KindBufferFull)
	ErrAllocFail       = newSentinel(KindAllocFail)
	ErrTooLarge        = newSentinel(KindTooLarge)
	ErrDepthExceeded   = newSentinel(KindDepthExceeded)
	ErrInvalidMagic    = newSentinel(KindInvalidMagic)
	ErrVersionMismatch = newSentinel(KindVersionMismatch)
	ErrTruncated       = newSentinel(KindTruncated)
	ErrCRCMismatch     = newSentinel(KindCRCMismatch)
	ErrInvalidType     = newSentinel(KindInvalidType)
	ErrOverflow        = newSentinel(KindOverflow)
	ErrMalformed       = newSentinel(KindMalformed)
	ErrNullPtr         = newSentinel(KindNullPtr)
	ErrInvalidArg      = newSentinel(KindInvalidArg)
	ErrInternal        = newSentinel(KindInternal)
	ErrNotFound        = newSentinel(KindNotFound)
	ErrTypeMismatch    = newSentinel(KindTypeMismatch)
)

func wrap(op string, k Kind) error {
	return &CodecError{Kind: k, Op: op}
}

func wrapf(op string, k Kind, err error) error {
	return &CodecError{Kind: k, Op: op, Err: err}
}

// ErrorKind extracts the Kind from an error produced by this package. It
// returns KindOK for a nil error and KindInternal if err was not produced
// here.
func ErrorKind(err error) Kind {
	if err == nil {
		return KindOK
	}
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var se *sentinelError
	if errors.As(err, &se) {
		return se.kind
	}
	return KindInternal
}
