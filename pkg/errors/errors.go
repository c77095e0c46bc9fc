// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap returns an error with status s caused by err, or nil if err is nil. If
// s is UnknownError the result takes on the status of err.
func (s Status) Wrap(err error) error {
	if err == nil {
		return nil
	}
	e := s.at(1)
	e.setCause(convert(err))
	return e
}

// With returns an error with status s and a message built with fmt.Sprint.
func (s Status) With(v ...interface{}) *Error {
	e := s.at(1)
	e.Message = fmt.Sprint(v...)
	return e
}

// WithFormat returns an error with status s and a message built with
// fmt.Errorf. An argument wrapped with %w becomes the cause.
func (s Status) WithFormat(format string, args ...interface{}) *Error {
	e := s.at(1)
	err := fmt.Errorf(format, args...)
	e.Message = err.Error()
	if cause := errors.Unwrap(err); cause != nil {
		e.setCause(convert(cause))
	}
	return e
}

// WithCauseAndFormat returns an error with status s, the given cause, and a
// message built with fmt.Sprintf. The message does not include the cause.
func (s Status) WithCauseAndFormat(cause error, format string, args ...interface{}) *Error {
	e := s.at(1)
	e.Message = fmt.Sprintf(format, args...)
	e.setCause(convert(cause))
	return e
}

// at creates an error with status s and records the call site skip frames
// above its caller.
func (s Status) at(skip int) *Error {
	e := &Error{Code: s}
	e.recordCallSite(skip + 2)
	return e
}

// convert turns an arbitrary error into an *Error, classifying context
// cancellation and deadlines.
func convert(err error) *Error {
	if err == nil {
		return &Error{Code: UnknownError, Message: "(nil)"}
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var s Status
	if errors.As(err, &s) {
		return &Error{Code: s, Message: err.Error()}
	}

	e = &Error{Code: UnknownError, Message: err.Error()}
	switch {
	case errors.Is(err, context.Canceled):
		e.Code = Canceled
	case errors.Is(err, context.DeadlineExceeded):
		e.Code = Timeout
	}

	if cause := errors.Unwrap(err); cause != nil {
		e.setCause(convert(cause))
	}
	return e
}

func (e *Error) setCause(cause *Error) {
	e.Cause = cause
	switch {
	case cause == nil, e.Code.IsKnownError():
		// Keep the status

	case e.Message != "":
		e.Code = cause.Code

	default:
		// Nothing to add, so become the cause but keep this call site
		stack := e.CallStack
		*e = *cause
		e.CallStack = append(stack, cause.CallStack...)
	}
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return e.Code.String()
	}
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Code
}

func (e *Error) Is(target error) bool {
	var code Status
	switch t := target.(type) {
	case *Error:
		code = t.Code
	case Status:
		code = t
	default:
		return false
	}

	for e := e; e != nil; e = e.Cause {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Public returns a copy of the error and its causes without call stacks, for
// sending to clients.
func (e *Error) Public() *Error {
	if e == nil {
		return nil
	}
	return &Error{
		Message: e.Error(),
		Code:    Code(e),
		Cause:   e.Cause.Public(),
	}
}
