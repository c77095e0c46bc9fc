// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"fmt"
	"runtime"
	"strings"
)

var trackLocation = true

func (e *Error) recordCallSite(depth int) {
	if !trackLocation {
		return
	}

	pc, file, line, ok := runtime.Caller(depth)
	if !ok {
		return
	}

	cs := &CallSite{File: file, Line: int64(line)}
	if fn := runtime.FuncForPC(pc); fn != nil {
		cs.FuncName = fn.Name()
	}
	e.CallStack = append(e.CallStack, cs)
}

// Format implements fmt.Formatter. %+v prints the call stack of each error in
// the chain.
func (e *Error) Format(f fmt.State, verb rune) {
	if f.Flag('+') {
		_, _ = f.Write([]byte(e.Print()))
	} else {
		_, _ = f.Write([]byte(e.Error()))
	}
}

// Print prints each error in the causal chain followed by its call stack:
//
//	<description>
//	<call stack>
//
//	<cause>
//	<call stack>
func (e *Error) Print() string {
	if e.CallStack == nil {
		return e.Error()
	}

	var parts []string
	for ; e != nil; e = e.Cause {
		msg := e.Message
		switch {
		case msg == "":
			msg = e.Code.String()
		case e.Cause != nil:
			// Messages built with %w end with the cause, which is printed next
			msg = strings.TrimSuffix(msg, e.Cause.Message)
		}

		var sb strings.Builder
		sb.WriteString(msg)
		sb.WriteByte('\n')
		for _, cs := range e.CallStack {
			fmt.Fprintf(&sb, "%s\n    %s:%d\n", cs.FuncName, cs.File, cs.Line)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n")
}
