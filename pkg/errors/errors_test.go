// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code lookup through chains

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/modsync/pkg/errors"
)

type codedErr struct{}

func (codedErr) Error() string                { return "drifted" }
func (codedErr) ErrorCode() errors.ErrorCode { return errors.ErrNeedsIngest }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "loadout not found",
			wantStr: "[NOT_FOUND] loadout not found",
		},
		{
			name:    "cycle_error",
			code:    errors.ErrSortCycle,
			message: "rules form a cycle",
			wantStr: "[SORT_CYCLE] rules form a cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("disk full")

	err := errors.Wrapf(base, errors.ErrFileWrite, "writing %s", "{Game}/a.txt")
	if got, want := err.Error(), "[FILE_WRITE] writing {Game}/a.txt: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, base) {
		t.Error("wrapped error should unwrap to base")
	}

	if errors.Wrap(nil, errors.ErrInternal, "nothing") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIs(t *testing.T) {
	err := errors.New(errors.ErrStaleState, "one")
	if !stderrors.Is(err, errors.New(errors.ErrStaleState, "other message")) {
		t.Error("errors with the same code should match")
	}
	if stderrors.Is(err, errors.New(errors.ErrNotFound, "one")) {
		t.Error("errors with different codes should not match")
	}
}

func TestIsErrorCode(t *testing.T) {
	inner := errors.New(errors.ErrRootContention, "cas lost")
	outer := errors.Wrap(inner, errors.ErrStoreWrite, "publish")
	wrapped := fmt.Errorf("apply: %w", outer)

	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
		want bool
	}{
		{"outer_code", wrapped, errors.ErrStoreWrite, true},
		{"inner_code", wrapped, errors.ErrRootContention, true},
		{"absent_code", wrapped, errors.ErrNeedsIngest, false},
		{"coded_domain_error", fmt.Errorf("x: %w", codedErr{}), errors.ErrNeedsIngest, true},
		{"plain_error", stderrors.New("plain"), errors.ErrUnknown, false},
		{"nil_error", nil, errors.ErrUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(plain) = %v, want UNKNOWN", got)
	}
	if got := errors.GetErrorCode(fmt.Errorf("x: %w", codedErr{})); got != errors.ErrNeedsIngest {
		t.Errorf("GetErrorCode(coded) = %v, want NEEDS_INGEST", got)
	}
	err := errors.New(errors.ErrNoSpace, "full").WithDetail("need", 10)
	if got := errors.GetErrorDetails(err)["need"]; got != 10 {
		t.Errorf("detail need = %v, want 10", got)
	}
}
