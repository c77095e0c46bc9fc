// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"fmt"
	"strings"
)

// Status is a request status code.
type Status uint64

const (
	// OK means the request completed successfully.
	OK Status = 200

	// BadRequest means the request was malformed.
	BadRequest Status = 400

	// NotFound means a record could not be found.
	NotFound Status = 404

	// Timeout means the request did not complete in time.
	Timeout Status = 408

	// Canceled means the request was canceled before it completed.
	Canceled Status = 499

	// UnknownError means an unknown error occurred.
	UnknownError Status = 500

	// EncodingError means encoding or decoding a value failed.
	EncodingError Status = 501

	// InternalError means an internal invariant was violated.
	InternalError Status = 502

	// FetchFailed means a read from an external service (contract or API) failed.
	FetchFailed Status = 503
)

var statusNames = map[Status]string{
	OK:            "ok",
	BadRequest:    "badRequest",
	NotFound:      "notFound",
	Timeout:       "timeout",
	Canceled:      "canceled",
	UnknownError:  "unknownError",
	EncodingError: "encodingError",
	InternalError: "internalError",
	FetchFailed:   "fetchFailed",
}

// Success returns true if the status represents success.
func (s Status) Success() bool { return s < 300 }

// IsKnownError returns true if the status is non-zero and not UnknownError.
func (s Status) IsKnownError() bool { return s != 0 && s != UnknownError }

// IsClientError returns true if the status is a client error.
func (s Status) IsClientError() bool { return s >= 400 && s < 500 }

// IsServerError returns true if the status is a server error.
func (s Status) IsServerError() bool { return s >= 500 }

// Error implements error.
func (s Status) Error() string { return s.String() }

// String returns the name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status:%d", uint64(s))
}

// StatusByName returns the status with the given name.
func StatusByName(name string) (Status, bool) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, ok := StatusByName(string(b))
	if !ok {
		return fmt.Errorf("%q is not a valid status", b)
	}
	*s = v
	return nil
}

// CallSite records where an error was created or wrapped.
type CallSite struct {
	FuncName string `json:"funcName,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int64  `json:"line,omitempty"`
}

// Error is a status-coded error with an optional cause and call stack.
type Error struct {
	Message   string      `json:"message,omitempty"`
	Code      Status      `json:"code,omitempty"`
	Cause     *Error      `json:"cause,omitempty"`
	CallStack []*CallSite `json:"callStack,omitempty"`
}
