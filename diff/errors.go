package diff

import (
	"errors"
	"fmt"
)

// ErrorKind classifies diff failures.
type ErrorKind int

const (
	ParseFailure ErrorKind = iota + 1
	AssetReadFailure
	SerializationFailure
)

var (
	ErrParse         = errors.New("parse failure")
	ErrAssetRead     = errors.New("asset read failure")
	ErrSerialization = errors.New("serialization failure")
)

func (k ErrorKind) String() string {
	switch k {
	case ParseFailure:
		return "ParseFailure"
	case AssetReadFailure:
		return "AssetReadFailure"
	case SerializationFailure:
		return "SerializationFailure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case ParseFailure:
		return ErrParse
	case AssetReadFailure:
		return ErrAssetRead
	case SerializationFailure:
		return ErrSerialization
	default:
		return nil
	}
}

// Error is returned by the diff for all failures which abort it. Use
// errors.Is with ErrParse, ErrAssetRead or ErrSerialization to distinguish
// them.
type Error struct {
	Kind   ErrorKind
	Source string // input or asset reference the failure relates to
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind.sentinel(), e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind ErrorKind, source string, err error) error {
	return &Error{Kind: kind, Source: source, Err: err}
}
