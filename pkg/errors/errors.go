package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTarget     = errors.New("invalid scan target")
	ErrRemoteUnavailable = errors.New("scan daemon unavailable")
	ErrScanInProgress    = errors.New("scan already in progress for target")
)

// RemoteError wraps a failed control-call against the scanning daemon.
// It matches ErrRemoteUnavailable under errors.Is so callers can treat all
// daemon failures uniformly while keeping the underlying cause.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("daemon %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{
		Op:  op,
		Err: err,
	}
}

// ScanTimeoutError reports which scan phase exhausted the wall-clock budget.
type ScanTimeoutError struct {
	Phase string
}

func (e *ScanTimeoutError) Error() string {
	return fmt.Sprintf("scan timed out during %s phase", e.Phase)
}

func NewScanTimeoutError(phase string) *ScanTimeoutError {
	return &ScanTimeoutError{Phase: phase}
}

// InvalidTargetError carries the rejected raw input and the parse failure.
type InvalidTargetError struct {
	Raw    string
	Reason string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid scan target %q: %s", e.Raw, e.Reason)
}

func (e *InvalidTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}

func NewInvalidTargetError(raw, reason string) *InvalidTargetError {
	return &InvalidTargetError{
		Raw:    raw,
		Reason: reason,
	}
}
