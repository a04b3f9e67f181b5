package syncer

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failures the engine can run into. Every error
// crossing a component boundary carries one, so the supervisors can log
// them uniformly.
type Kind string

const (
	ConnectFailed   Kind = "connect failed"
	WaitFailed      Kind = "wait failed"
	DownloadFailed  Kind = "download failed"
	NormalizeFailed Kind = "normalize failed"
	SinkWriteFailed Kind = "sink write failed"
)

type Error struct {
	Kind    Kind
	Account string
	Err     error
}

func (e *Error) Error() string {
	if e.Account == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (account %s): %s", e.Kind, e.Account, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by kind, so errors.Is(err, &Error{Kind: WaitFailed}) selects
// on the classification regardless of account and cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var syncErr *Error
	return errors.As(err, &syncErr) && syncErr.Kind == kind
}
