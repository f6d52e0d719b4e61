package geo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a position could not be acquired.
type Kind int

const (
	PermissionDenied Kind = iota + 1
	PositionUnavailable
	Timeout
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case Timeout:
		return "timeout"
	case Unsupported:
		return "unsupported"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// retryable reports whether a lower accuracy attempt can fix the failure.
func (k Kind) retryable() bool {
	return k == PositionUnavailable || k == Timeout
}

// Error is a failed acquisition.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	msg := "geo: " + e.Kind.String()
	if e.Stage != "" {
		msg += " (" + e.Stage + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user for the failure.
func (e *Error) Message() string {
	return Message(e.Kind)
}

// NewError returns an *Error of the given kind. Devices use it to report
// classified failures.
func NewError(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from err.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

// Message returns a user facing explanation with the action that fixes the
// failure.
func Message(kind Kind) string {
	switch kind {
	case PermissionDenied:
		return "위치 권한이 거부되었습니다. 기기 설정에서 위치 권한을 허용한 뒤 다시 시도해 주세요."
	case PositionUnavailable, Timeout:
		return "현재 위치를 확인할 수 없습니다. 실외나 창가로 이동한 뒤 다시 시도해 주세요."
	case Unsupported:
		return "이 기기에서는 위치 서비스를 사용할 수 없습니다."
	}
	return "위치를 확인하지 못했습니다."
}
