// Package templates renders the HTML fragments swapped in by HTMX on the
// import modal.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/noor-ul-masajid/console/internal/core"
)

// MaxListedErrors caps the row errors shown in the summary panel.
const MaxListedErrors = 50

// ErrorAlert renders a dismissible error box for a failed request.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w,
			`<div class="alert alert-error" role="alert">`,
			`<p class="alert-message">`, templ.EscapeString(message), `</p>`,
			optional(`<p class="alert-action">`, action, `</p>`),
			`<span class="alert-code">`, templ.EscapeString(code), `</span>`,
			`</div>`,
		)
	})
}

// ImportSummary renders the result panel shown after processing. Accepted
// imports show the counts; rejected ones list the failing rows.
func ImportSummary(result *core.ImportResult) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if result.OK() {
			return write(w,
				`<div class="import-summary import-success">`,
				`<h3>Import complete</h3>`,
				`<dl>`,
				stat("Total rows", result.TotalRows),
				stat("New records added", result.NewRecordsAdded),
				stat("Records updated", result.RecordsUpdated),
				`</dl>`,
				`</div>`,
			)
		}

		if err := write(w,
			`<div class="import-summary import-failed">`,
			`<h3>Import failed</h3>`,
			`<p>`, strconv.Itoa(len(result.Errors)), ` problem(s) in `,
			strconv.Itoa(result.TotalRows), ` row(s). Nothing was imported.</p>`,
			`<ul class="row-errors">`,
		); err != nil {
			return err
		}

		for i, e := range result.Errors {
			if i == MaxListedErrors {
				more := len(result.Errors) - MaxListedErrors
				if err := write(w, `<li class="more">and `, strconv.Itoa(more), ` more</li>`); err != nil {
					return err
				}
				break
			}
			if err := write(w,
				`<li><span class="row">Row `, strconv.Itoa(e.Row), `</span> `,
				templ.EscapeString(e.Message), `</li>`,
			); err != nil {
				return err
			}
		}

		return write(w, `</ul>`, `</div>`)
	})
}

func stat(label string, n int) string {
	return fmt.Sprintf(`<dt>%s</dt><dd>%d</dd>`, templ.EscapeString(label), n)
}

func optional(open, text, close string) string {
	if text == "" {
		return ""
	}
	return open + templ.EscapeString(text) + close
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}
