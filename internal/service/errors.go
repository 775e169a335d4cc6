package service

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindEmptyPrompt         ErrorKind = "empty_prompt"
	KindPromptTooShort      ErrorKind = "prompt_too_short"
	KindPromptTooLong       ErrorKind = "prompt_too_long"
	KindUnknownStyle        ErrorKind = "unknown_style"
	KindQuotaExceeded       ErrorKind = "quota_exceeded"
	KindTransport           ErrorKind = "transport"
	KindUpstreamStatus      ErrorKind = "upstream_status"
	KindEmptyPayload        ErrorKind = "empty_payload"
	KindWriteFailure        ErrorKind = "write_failure"
	KindPersistence         ErrorKind = "persistence"
	KindNotFoundOrForbidden ErrorKind = "not_found_or_forbidden"
	KindInternal            ErrorKind = "internal"
)

// Error is the classified failure returned by the gallery and generation services.
// UpstreamStatus carries the provider's HTTP status for KindUpstreamStatus.
type Error struct {
	Kind           ErrorKind
	Message        string
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// UpstreamStatusOf returns the provider status code carried by err, if any.
func UpstreamStatusOf(err error) (int, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Kind == KindUpstreamStatus && svcErr.UpstreamStatus != 0 {
		return svcErr.UpstreamStatus, true
	}
	return 0, false
}
