package csvutil

import "strings"

// Writer builds CSV documents in the export format used by the review
// screen: every field is wrapped in double quotes with embedded quotes
// doubled, rows are joined with "\n".
type Writer struct {
	sb strings.Builder
}

// WriteRow appends one record
func (w *Writer) WriteRow(fields []string) {
	if w.sb.Len() > 0 {
		w.sb.WriteByte('\n')
	}
	for i, f := range fields {
		if i > 0 {
			w.sb.WriteByte(',')
		}
		w.sb.WriteByte('"')
		w.sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.sb.WriteByte('"')
	}
}

// String returns the document built so far
func (w *Writer) String() string {
	return w.sb.String()
}
