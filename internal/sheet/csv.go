package sheet

// csv.go decodes comma-separated input.
//
// User-exported CSV is messy: Excel on Windows prepends a UTF-8 BOM, legacy
// encodings leave invalid byte sequences, and quoting is inconsistent. The
// reader skips the BOM, replaces invalid bytes with U+FFFD, and accepts lazy
// quotes and ragged rows.

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ContextCheckInterval is how often (in records) CSV decoding checks for cancellation.
var ContextCheckInterval = 100

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textSample is how many leading bytes looksLikeText inspects.
const textSample = 8 << 10

// looksLikeText rejects input holding a NUL byte or where more than one
// byte in ten is a control character other than tab, CR, LF or form feed.
// Invalid UTF-8 still counts as text since it is repaired on decode.
func looksLikeText(data []byte) bool {
	if len(data) > textSample {
		data = data[:textSample]
	}
	control := 0
	for _, b := range data {
		switch {
		case b == 0:
			return false
		case b == 0x7f, b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f':
			control++
		}
	}
	return control*10 <= len(data)
}

func readCSV(ctx context.Context, data []byte) ([][]any, error) {
	data = sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var matrix [][]any
	for n := 0; ; n++ {
		if n%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: invalid csv: %v", ErrUnreadableFile, err)
		}

		cells := make([]any, len(record))
		for i, v := range record {
			if v == "" {
				continue // absent cell
			}
			cells[i] = v
		}
		matrix = append(matrix, cells)
	}

	return matrix, nil
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement character.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
