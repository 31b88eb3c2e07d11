// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes provider failures for handling.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindRejected
	KindUnavailable
	KindModelNotFound
	KindCanceled
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindRejected:
		return "rejected"
	case KindUnavailable:
		return "unavailable"
	case KindModelNotFound:
		return "model_not_found"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the error returned by every ResponseProvider in this package.
type Error struct {
	Kind     Kind
	Provider string
	Model    string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "", strings.HasPrefix(e.Cause.Error(), e.Message):
		return e.Cause.Error()
	default:
		return e.Message + ": " + e.Cause.Error()
	}
}

// UserMessage is the short text shown in place of the failed reply.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same known kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind != KindUnknown && e.Kind == t.Kind
}

// Sentinel errors for easy checking.
var (
	ErrTimeout       = &Error{Kind: KindTimeout, Message: "the model took too long to respond"}
	ErrRejected      = &Error{Kind: KindRejected, Message: "the request was rejected"}
	ErrUnavailable   = &Error{Kind: KindUnavailable, Message: "the model backend is unavailable"}
	ErrModelNotFound = &Error{Kind: KindModelNotFound, Message: "the model is not installed"}
	ErrCanceled      = &Error{Kind: KindCanceled, Message: "the request was canceled"}
)

// Classify returns err as an *Error. Errors that already are one are
// returned unchanged; context errors map to KindTimeout or KindCanceled;
// anything else becomes KindUnknown.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: ErrTimeout.Message, Cause: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Message: ErrCanceled.Message, Cause: err}
	default:
		return &Error{Kind: KindUnknown, Cause: err}
	}
}

// KindOf returns the Kind of err after classification.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	return Classify(err).Kind
}
