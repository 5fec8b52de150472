package catalog

// csv.go tokenizes raw CSV text into rows of trimmed string fields.
//
// The tokenizer is deliberately lenient: menu CSVs come from spreadsheets
// exported by hotel staff, so malformed quoting must not sink the whole
// file. An unterminated quote consumes the rest of its line and nothing
// more. Blank lines are dropped before row numbering, so the header is
// always row 1 and the first data row is row 2.

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Tokenize splits raw CSV text into rows of trimmed fields.
// Handles both \n and \r\n line endings. Blank lines are not counted as rows.
func Tokenize(data []byte) [][]string {
	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}
	return rows
}

// splitLine tokenizes a single line. Fields are comma-separated; a field may
// be wrapped in double quotes, inside which "" is a literal quote and commas
// are not separators. Every field is whitespace-trimmed.
func splitLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteByte(c)
			}
		case c == '"':
			inQuotes = true
		case c == ',':
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement
// character so downstream string handling never sees broken encoding.
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
