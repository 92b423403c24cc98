// Package rlm defines the module result codes exchanged with the RADIUS
// front-end and their severity classification.
//
// Numeric values match the RLM_MODULE_* constants of the host, so a Code can
// be written to the wire as a single byte without translation.
package rlm

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/radadapter/observability"
)

// Code is the outcome of a module handler or of the whole pipeline.
type Code uint8

const (
	REJECT   Code = 0 // Immediately reject the request.
	FAIL     Code = 1 // Module failed, don't reply.
	OK       Code = 2 // The module is OK, continue.
	HANDLED  Code = 3 // The module handled the request, so stop.
	INVALID  Code = 4 // The module considers the request invalid.
	USERLOCK Code = 5 // Reject the request (user is locked out).
	NOTFOUND Code = 6 // User not found.
	NOOP     Code = 7 // Module succeeded without doing anything.
	UPDATED  Code = 8 // OK (pairs modified).
	NUMCODES Code = 9 // How many return codes there are.
)

var names = [...]string{
	REJECT:   "REJECT",
	FAIL:     "FAIL",
	OK:       "OK",
	HANDLED:  "HANDLED",
	INVALID:  "INVALID",
	USERLOCK: "USERLOCK",
	NOTFOUND: "NOTFOUND",
	NOOP:     "NOOP",
	UPDATED:  "UPDATED",
	NUMCODES: "NUMCODES",
}

// Codes returns every defined code in numeric order.
func Codes() []Code {
	codes := make([]Code, 0, len(names))
	for i := range names {
		codes = append(codes, Code(i))
	}
	return codes
}

// Defined reports whether c is one of the enumerated codes.
func (c Code) Defined() bool {
	return int(c) < len(names)
}

func (c Code) String() string {
	if c.Defined() {
		return names[c]
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

// ParseCode resolves a code by name, ignoring case and an optional
// "RLM_MODULE_" prefix.
func ParseCode(s string) (Code, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "RLM_MODULE_")
	for i, n := range names {
		if n == name {
			return Code(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCode, s)
}

// MarshalText encodes the code by name.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the names understood by ParseCode.
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Class groups codes by how the pipeline treats them.
type Class int

const (
	// ClassContinue lets the pipeline move on to the next handler.
	ClassContinue Class = iota
	// ClassStop ends the pipeline with an expected outcome.
	ClassStop
	// ClassFatal ends the pipeline with an error outcome.
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassStop:
		return "stop"
	case ClassFatal:
		return "fatal"
	default:
		return "continue"
	}
}

// Class classifies the code. Every value, defined or not, belongs to exactly
// one class; anything not listed as fatal or stopping continues.
func (c Code) Class() Class {
	switch c {
	case INVALID, NOTFOUND, FAIL:
		return ClassFatal
	case HANDLED, REJECT:
		return ClassStop
	default:
		return ClassContinue
	}
}

// Stops reports whether a handler returning a code of this class ends the
// pipeline.
func (c Class) Stops() bool {
	return c == ClassStop || c == ClassFatal
}

// Level is the log severity used when a handler returns a code of this class.
func (c Class) Level() observability.Level {
	switch c {
	case ClassFatal:
		return observability.LevelError
	case ClassStop:
		return observability.LevelInfo
	default:
		return observability.LevelVerbose
	}
}
