package sftpinventory

import (
	"errors"
	"fmt"
)

// Kind classifies every error returned by this package.
// A Kind is itself an error, so callers can test with errors.Is(err, KindList).
type Kind int

const (
	// KindInvalidArgument reports malformed configuration or call arguments.
	// It is always detected before any network activity.
	KindInvalidArgument Kind = iota + 1
	// KindConnection reports authentication, dial, handshake, host key or
	// channel-open failures.
	KindConnection
	// KindList reports failures while enumerating the remote directory.
	KindList
	// KindIllegalState reports session operations out of order, such as
	// Disconnect without Connect.
	KindIllegalState
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindConnection:
		return "connection error"
	case KindList:
		return "list error"
	case KindIllegalState:
		return "illegal state"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) Error() string { return k.String() }

// Error is the concrete error type returned by the client.
type Error struct {
	// Kind is the error classification.
	Kind Kind
	// Op names the stage that failed: "config", "connect", "channel", "list", "disconnect".
	Op string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the Kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the Kind of err, or 0 if err was not produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalidArgument(op, msg string) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: errors.New(msg)}
}

func illegalState(op, msg string) error {
	return &Error{Kind: KindIllegalState, Op: op, Err: errors.New(msg)}
}

func connectionError(op string, err error) error {
	return &Error{Kind: KindConnection, Op: op, Err: err}
}

func listError(err error) error {
	return &Error{Kind: KindList, Op: "list", Err: err}
}
