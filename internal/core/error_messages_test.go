package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/noor-ul-masajid/console/internal/sheet"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"file too large", fmt.Errorf("parse a.xlsx: %w", sheet.ErrFileTooLarge), "FILE001"},
		{"unreadable file", fmt.Errorf("parse a.xlsx: %w: zip: not a valid zip file", sheet.ErrUnreadableFile), "FILE002"},
		{"no file", errors.New("no file provided"), "FILE003"},
		{"empty sheet", ErrEmptySheet, "FILE004"},
		{"unmapped required columns", fmt.Errorf("%w: required columns not mapped: Status", ErrNotReady), "VAL002"},
		{"not ready", fmt.Errorf("%w: no file selected", ErrNotReady), "SES002"},
		{"session not found", fmt.Errorf("%w: abc", ErrSessionNotFound), "SES001"},
		{"mapping index", fmt.Errorf("%w: 9", ErrMappingIndex), "SES003"},
		{"too many imports", ErrTooManyImports, "IMP001"},
		{"rejected", fmt.Errorf("%w: %w", ErrImportRejected, errors.New("disk full")), "IMP002"},
		{"canceled", context.Canceled, "IMP003"},
		{"deadline", context.DeadlineExceeded, "IMP004"},
		{"unknown schema", fmt.Errorf("%w: grades", ErrUnknownSchema), "SCH001"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), "DB001"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("UNKNOWN SCHEMA foo"), "SCH001"},
		{"unknown error", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyImports)
	want := "System is busy processing other imports (Code: IMP001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrSessionNotFound, true},
		{errors.New("segfault in the matrix"), false},
	}

	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
