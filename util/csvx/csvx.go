// Package csvx writes CSV where every field is double-quoted.
package csvx

import (
	"bufio"
	"io"
	"strings"
)

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits one record. Embedded quotes are doubled; commas and line breaks
// stay literal inside the quotes.
func (cw *Writer) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := cw.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := cw.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := cw.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
			return err
		}
		if err := cw.w.WriteByte('"'); err != nil {
			return err
		}
	}
	return cw.w.WriteByte('\n')
}

func (cw *Writer) WriteAll(records [][]string) error {
	for _, r := range records {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return cw.Flush()
}

func (cw *Writer) Flush() error { return cw.w.Flush() }
