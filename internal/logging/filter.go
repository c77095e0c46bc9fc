// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ModuleLevels is a level table parsed from a string such as
// "error;ledger=debug;web=info". An entry without a module name, or with the
// name "*", sets the level of every other module.
type ModuleLevels struct {
	Default zerolog.Level
	Modules map[string]zerolog.Level
}

// ParseModuleLevels parses a level table. Modules are separated by ';'.
func ParseModuleLevels(s string) (*ModuleLevels, error) {
	m := &ModuleLevels{
		Default: zerolog.Disabled,
		Modules: map[string]zerolog.Level{},
	}
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, value, named := strings.Cut(entry, "=")
		if !named {
			name, value = "*", entry
		}

		level, err := zerolog.ParseLevel(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}

		name = strings.TrimSpace(name)
		if name == "*" {
			m.Default = level
		} else {
			m.Modules[name] = level
		}
	}
	return m, nil
}

// Lowest returns the most verbose level in the table.
func (m *ModuleLevels) Lowest() zerolog.Level {
	lowest := m.Default
	for _, l := range m.Modules {
		if l < lowest {
			lowest = l
		}
	}
	return lowest
}

// Enabled returns true if an event at the given level from the given module
// should be written.
func (m *ModuleLevels) Enabled(level zerolog.Level, module string) bool {
	l, ok := m.Modules[module]
	if !ok {
		l = m.Default
	}
	return level >= l
}

// ParseLogLevel parses a level string. A plain level such as "info" is
// returned as-is. A module table returns its lowest level and wraps the writer
// with a FilterWriter that applies each module's level.
func ParseLogLevel(s string, w io.Writer) (string, io.Writer, error) {
	if !strings.Contains(s, "=") {
		return s, w, nil
	}

	levels, err := ParseModuleLevels(s)
	if err != nil {
		return "", nil, err
	}

	return levels.Lowest().String(), FilterWriter{Out: w, Predicate: levels.Enabled}, nil
}

// FilterWriter drops events the predicate rejects. It must receive zerolog's
// JSON output, so it goes underneath any console formatting.
type FilterWriter struct {
	Out       io.Writer
	Predicate func(level zerolog.Level, module string) bool
}

var _ zerolog.LevelWriter = FilterWriter{}

// eventHeader holds the fields of an event the filter looks at.
type eventHeader struct {
	Level  string `json:"level"`
	Module string `json:"module"`
}

func (w FilterWriter) Write(p []byte) (n int, err error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w FilterWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	var h eventHeader
	err = json.Unmarshal(p, &h)
	if err != nil {
		return 0, fmt.Errorf("cannot decode event: %w", err)
	}

	if level == zerolog.NoLevel && h.Level != "" {
		level, _ = zerolog.ParseLevel(h.Level)
	}

	if w.Predicate != nil && !w.Predicate(level, h.Module) {
		return len(p), nil
	}
	return w.Out.Write(p)
}
