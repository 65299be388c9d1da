package templates

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/noor-ul-masajid/console/internal/core"
)

func TestImportSummary_Success(t *testing.T) {
	var buf bytes.Buffer
	result := &core.ImportResult{TotalRows: 3, NewRecordsAdded: 2, RecordsUpdated: 1, Errors: []core.RowError{}}

	if err := ImportSummary(result).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Import complete", "<dd>3</dd>", "<dd>2</dd>", "<dd>1</dd>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestImportSummary_ErrorsEscapedAndCapped(t *testing.T) {
	errs := make([]core.RowError, MaxListedErrors+5)
	for i := range errs {
		errs[i] = core.RowError{Row: i + 2, Message: fmt.Sprintf("Required field '<b>%d</b>' is missing.", i)}
	}

	var buf bytes.Buffer
	if err := ImportSummary(&core.ImportResult{TotalRows: len(errs), Errors: errs}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "<b>") {
		t.Error("row message was not escaped")
	}
	if got := strings.Count(out, `<span class="row">`); got != MaxListedErrors {
		t.Errorf("listed %d errors, want %d", got, MaxListedErrors)
	}
	if !strings.Contains(out, "and 5 more") {
		t.Errorf("output missing overflow line: %s", out)
	}
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("File is too large", "", "FILE001").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "File is too large") || !strings.Contains(out, "FILE001") {
		t.Errorf("output = %s", out)
	}
	if strings.Contains(out, "alert-action") {
		t.Error("empty action should be omitted")
	}
}
