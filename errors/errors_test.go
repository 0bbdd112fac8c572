package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseBuild,
				Kind:     KindOverflow,
				Path:     []string{"status", "flags", "ready"},
				TypeName: "u8",
				Detail:   "bit 9 out of range",
			},
			contains: []string{"[build]", "overflow", "status.flags.ready", "type u8", "bit 9 out of range"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseQuery,
				Kind:  KindNotFound,
			},
			contains: []string{"[query]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "read types.json",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "read types.json", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseImport,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseBuild,
		Kind:  KindFrozen,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseBuild, Kind: KindFrozen}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseQuery, Kind: KindFrozen}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseBuild, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseBuild, Kind: KindFrozen}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseBuild, KindOverflow).
		Path("udt", "flags").
		TypeName("bitfield").
		Value(42).
		Cause(cause).
		Detail("expected at most %d bits, got %d", 32, 42).
		Build()

	if err.Phase != PhaseBuild {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseBuild)
	}
	if err.Kind != KindOverflow {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
	}
	if len(err.Path) != 2 || err.Path[0] != "udt" || err.Path[1] != "flags" {
		t.Errorf("Path = %v, want [udt flags]", err.Path)
	}
	if err.TypeName != "bitfield" {
		t.Errorf("TypeName = %v, want 'bitfield'", err.TypeName)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected at most 32 bits, got 42" {
		t.Errorf("Detail = %v, want 'expected at most 32 bits, got 42'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseBuild, "nil reference")
		if err.Kind != KindInvalidInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseQuery, []string{"fields"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseBuild, "bar", 40, 32)
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 40 {
			t.Errorf("Value = %v, want 40", err.Value)
		}
		if !strings.Contains(err.Detail, "40") || !strings.Contains(err.Detail, "32") {
			t.Errorf("Detail = %v, should mention value and limit", err.Detail)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseQuery, "type", "node")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Detail, `"node"`) {
			t.Errorf("Detail = %v, should quote the name", err.Detail)
		}
	})

	t.Run("Frozen", func(t *testing.T) {
		err := Frozen(PhaseBuild, "node")
		if err.Kind != KindFrozen || err.TypeName != "node" {
			t.Errorf("Kind=%v TypeName=%v", err.Kind, err.TypeName)
		}
	})

	t.Run("ForeignReference", func(t *testing.T) {
		err := ForeignReference(PhaseBuild, []string{"node", "next"}, "node*")
		if err.Kind != KindForeignReference {
			t.Errorf("Kind = %v, want %v", err.Kind, KindForeignReference)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseImport, "stream types")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(PhaseDiff, KindInvalidData, cause, "compare")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep the cause in the chain")
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		err := ParseFailed("wit json", errors.New("eof"))
		if err.Phase != PhaseLoad || !strings.Contains(err.Error(), "parse wit json") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func TestIncompleteError(t *testing.T) {
	t.Run("named declarations", func(t *testing.T) {
		err := NewIncompleteError([]string{"node", "list"})
		msg := err.Error()
		if !strings.Contains(msg, "2 declared") {
			t.Errorf("error should contain count, got %q", msg)
		}
		if !strings.Contains(msg, "- node") || !strings.Contains(msg, "- list") {
			t.Errorf("error should list names, got %q", msg)
		}
	})

	t.Run("anonymous declarations grouped", func(t *testing.T) {
		err := NewIncompleteError([]string{"", "node", ""})
		msg := err.Error()
		if !strings.Contains(msg, "<2 anonymous>") {
			t.Errorf("error should count anonymous declarations, got %q", msg)
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := NewIncompleteError(nil)
		if !strings.Contains(err.Error(), "no declarations specified") {
			t.Errorf("empty error should have specific message, got: %s", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := NewIncompleteError([]string{"node"})
		if !errors.Is(err, &IncompleteError{}) {
			t.Error("errors.Is should match IncompleteError")
		}
		if !errors.Is(err, &Error{Phase: PhaseBuild, Kind: KindIncomplete}) {
			t.Error("errors.Is should match the build/incomplete template")
		}
	})
}
