package render

import (
	"encoding/csv"
	"io"
	"strings"
)

// formulaTriggers are the characters spreadsheet applications treat as
// the start of a formula.
const formulaTriggers = "=+-@"

// DefangField neutralizes spreadsheet formula injection. A field whose
// first character could start a formula gets a leading tab, which Excel
// and LibreOffice render invisibly but refuse to evaluate. Values that
// merely contain a trigger mid-string pass through untouched.
func DefangField(value string) string {
	if value != "" && strings.ContainsRune(formulaTriggers, rune(value[0])) {
		return "\t" + value
	}
	return value
}

// WriteRows serializes rows as CSV in the fulfillment partner's wire
// format: no header, comma delimited, CRLF terminating every row
// including the last, every field defanged before quoting.
func WriteRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	for _, row := range rows {
		out := make([]string, len(row))
		for i, field := range row {
			out[i] = DefangField(field)
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
