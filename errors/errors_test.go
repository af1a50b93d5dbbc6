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
				Phase:  PhaseRegister,
				Kind:   KindDuplicateRegistration,
				Name:   "fileResolver",
				Detail: "namespace differs",
			},
			contains: []string{"[register]", "duplicate_registration", `"fileResolver"`, "namespace differs"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResolve,
				Kind:  KindUnknownDependency,
			},
			contains: []string{"[resolve]", "unknown_dependency"},
		},
		{
			name:     "cycle path",
			err:      CyclicDependency([]string{"a", "b", "a"}),
			contains: []string{"[resolve]", "cyclic_dependency", "a -> b -> a"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase: PhaseImport,
				Kind:  KindImportFailure,
				Name:  "tf",
				Cause: errors.New("underlying error"),
			},
			contains: []string{"[import]", "import_failure", "caused by", "underlying error"},
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
	err := ImportFailure("vt", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := UnknownDependency("ar")

	if !errors.Is(err, ErrUnknownDependency) {
		t.Error("Is should match sentinel of same phase and kind")
	}

	if errors.Is(err, ErrCyclicDependency) {
		t.Error("Is should not match different kind")
	}

	if err.Is(&Error{Phase: PhaseImport, Kind: KindUnknownDependency}) {
		t.Error("Is should not match different phase")
	}

	if !err.Is(&Error{Kind: KindUnknownDependency}) {
		t.Error("empty target phase should match any phase")
	}

	var target *Error
	if !errors.As(err, &target) || target.Name != "ar" {
		t.Errorf("errors.As = %v, want name ar", target)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseResolve, KindUnknownDependency).
		Name("js").
		Path("fileResolver", "js").
		Cause(cause).
		Detail("required by %s", "fileResolver").
		Build()

	if err.Phase != PhaseResolve {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseResolve)
	}
	if err.Kind != KindUnknownDependency {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownDependency)
	}
	if err.Name != "js" {
		t.Errorf("Name = %q, want js", err.Name)
	}
	if len(err.Path) != 2 || err.Path[0] != "fileResolver" || err.Path[1] != "js" {
		t.Errorf("Path = %v, want [fileResolver js]", err.Path)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "required by fileResolver" {
		t.Errorf("Detail = %v, want 'required by fileResolver'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("DuplicateRegistration", func(t *testing.T) {
		err := DuplicateRegistration("a", "dependencies differ")
		if !errors.Is(err, ErrDuplicateRegistration) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicateRegistration)
		}
		if err.Name != "a" {
			t.Errorf("Name = %q, want a", err.Name)
		}
	})

	t.Run("UnknownDependencyOf", func(t *testing.T) {
		err := UnknownDependencyOf("vt", "tf")
		if !errors.Is(err, ErrUnknownDependency) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownDependency)
		}
		if !strings.Contains(err.Detail, `"tf"`) {
			t.Errorf("Detail = %q, should name dependent", err.Detail)
		}
	})

	t.Run("CyclicDependency copies path", func(t *testing.T) {
		path := []string{"a", "b", "a"}
		err := CyclicDependency(path)
		path[0] = "z"
		if err.Path[0] != "a" || err.Name != "a" {
			t.Errorf("Path = %v Name = %q, want copy starting at a", err.Path, err.Name)
		}
	})

	t.Run("ImportFailure", func(t *testing.T) {
		err := ImportFailure("tf", errors.New("boom"))
		if !errors.Is(err, ErrImportFailure) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindImportFailure)
		}
	})

	t.Run("InvalidState", func(t *testing.T) {
		err := InvalidState("tf", "loaded", "loading")
		if err.Kind != KindInvalidState {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidState)
		}
		if !strings.Contains(err.Detail, "loaded") {
			t.Errorf("Detail = %q, should contain source state", err.Detail)
		}
	})
}
