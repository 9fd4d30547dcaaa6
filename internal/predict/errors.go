package predict

import (
	"errors"
	"fmt"
)

// UserMessage is the only failure text shown to the user.
const UserMessage = "Unable to connect to prediction service"

// Kind classifies a prediction failure for logging.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindEncode
	KindTransport
	KindStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindEncode:
		return "encode"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a classified prediction failure.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("prediction %s error (HTTP %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("prediction %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.StatusCode
	}
	return 0
}

// UserMessageFor maps any failure to the fixed user-facing message.
func UserMessageFor(err error) string {
	if err == nil {
		return ""
	}
	return UserMessage
}
