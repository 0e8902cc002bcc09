package apierr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindConfig Kind = iota + 1
	KindTransport
	KindDecode
	KindStatus
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindStatus:
		return "status"
	case KindFilesystem:
		return "filesystem"
	}
	return "unknown"
}

// Error is the single failure shape returned by the request layers.
// Message is the human readable reason. When the server supplied no text,
// Message is empty and Payload holds the parsed response tree instead.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int // ocs.meta.statuscode, 0 if unknown
	HTTPStatus int
	Payload    interface{}
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if len(msg) == 0 && e.Err != nil {
		msg = e.Err.Error()
	}
	if len(msg) == 0 && e.Payload != nil {
		msg = fmt.Sprintf("%v", e.Payload)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error, code:%d, msg:%s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s error, msg:%s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasPayload reports whether the error carries a structured response tree
// rather than a plain message.
func (e *Error) HasPayload() bool {
	return e != nil && len(e.Message) == 0 && e.Payload != nil
}

func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsKind(err error, k Kind) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	return e.Kind == k
}

func NewConfig(msg string) *Error {
	return &Error{Kind: KindConfig, Message: msg}
}

func NewTransport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func NewDecode(msg string, err error) *Error {
	return &Error{Kind: KindDecode, Message: msg, Err: err}
}

func NewStatus(msg string) *Error {
	return &Error{Kind: KindStatus, Message: msg}
}

func NewFilesystem(err error) *Error {
	e := &Error{Kind: KindFilesystem, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}
