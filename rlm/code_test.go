package rlm_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/radadapter/observability"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

func TestCode_WireValues(t *testing.T) {
	tests := []struct {
		code rlm.Code
		want uint8
	}{
		{rlm.REJECT, 0},
		{rlm.FAIL, 1},
		{rlm.OK, 2},
		{rlm.HANDLED, 3},
		{rlm.INVALID, 4},
		{rlm.USERLOCK, 5},
		{rlm.NOTFOUND, 6},
		{rlm.NOOP, 7},
		{rlm.UPDATED, 8},
		{rlm.NUMCODES, 9},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if uint8(tt.code) != tt.want {
				t.Errorf("%s = %d, want %d", tt.code, uint8(tt.code), tt.want)
			}
		})
	}
}

func TestCode_ClassIsTotal(t *testing.T) {
	fatal := map[rlm.Code]bool{rlm.INVALID: true, rlm.NOTFOUND: true, rlm.FAIL: true}
	stop := map[rlm.Code]bool{rlm.HANDLED: true, rlm.REJECT: true}

	seen := 0
	for _, code := range rlm.Codes() {
		seen++
		var want rlm.Class
		switch {
		case fatal[code]:
			want = rlm.ClassFatal
		case stop[code]:
			want = rlm.ClassStop
		default:
			want = rlm.ClassContinue
		}

		if got := code.Class(); got != want {
			t.Errorf("%s.Class() = %s, want %s", code, got, want)
		}
	}

	if seen != 10 {
		t.Errorf("Codes() returned %d codes, want 10", seen)
	}
}

func TestCode_UndefinedContinues(t *testing.T) {
	for _, v := range []uint8{10, 42, 255} {
		code := rlm.Code(v)
		if code.Defined() {
			t.Errorf("Code(%d).Defined() = true, want false", v)
		}
		if code.Class() != rlm.ClassContinue {
			t.Errorf("Code(%d).Class() = %s, want continue", v, code.Class())
		}
	}
}

func TestClass_StopsAndLevel(t *testing.T) {
	tests := []struct {
		class rlm.Class
		stops bool
		level observability.Level
	}{
		{rlm.ClassContinue, false, observability.LevelVerbose},
		{rlm.ClassStop, true, observability.LevelInfo},
		{rlm.ClassFatal, true, observability.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			if got := tt.class.Stops(); got != tt.stops {
				t.Errorf("Stops() = %v, want %v", got, tt.stops)
			}
			if got := tt.class.Level(); got != tt.level {
				t.Errorf("Level() = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in      string
		want    rlm.Code
		wantErr bool
	}{
		{in: "handled", want: rlm.HANDLED},
		{in: "RLM_MODULE_REJECT", want: rlm.REJECT},
		{in: " updated ", want: rlm.UPDATED},
		{in: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := rlm.ParseCode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, rlm.ErrUnknownCode) {
					t.Fatalf("ParseCode(%q) error = %v, want ErrUnknownCode", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseCode(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestCode_String(t *testing.T) {
	if got := rlm.Code(77).String(); got != "Code(77)" {
		t.Errorf("String() = %q, want %q", got, "Code(77)")
	}
	if got := rlm.USERLOCK.String(); got != "USERLOCK" {
		t.Errorf("String() = %q, want %q", got, "USERLOCK")
	}
}
