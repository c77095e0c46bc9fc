// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import "errors"

// As calls stdlib errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is calls stdlib errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// Unwrap calls stdlib errors.Unwrap.
func Unwrap(err error) error { return errors.Unwrap(err) }

// Code returns the most specific status in the error chain. Errors that are
// not status errors report 0.
func Code(err error) Status {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	for e.Code == UnknownError && e.Cause != nil {
		e = e.Cause
	}
	return e.Code
}

// IsFetchFailure returns true if err reports a failed read from the chain or
// an external API, as opposed to a bad request or a cancellation.
func IsFetchFailure(err error) bool {
	switch Code(err) {
	case FetchFailed, Timeout, EncodingError:
		return true
	}
	return false
}
