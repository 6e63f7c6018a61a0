package render

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRowsCRLFTermination(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRows(&buf, [][]string{
		{"KING01", "DPD", "1001"},
		{"KING01", "DPD", "1002"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, "KING01,DPD,1001\r\nKING01,DPD,1002\r\n", out)
	assert.True(t, strings.HasSuffix(out, "\r\n"), "last row must be CRLF terminated")
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}

func TestWriteRowsNoHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, [][]string{{"a", "b"}}))
	assert.Equal(t, "a,b\r\n", buf.String())
}

func TestWriteRowsQuotingRoundTrip(t *testing.T) {
	row := []string{
		"plain",
		"has,comma",
		`has "quotes"`,
		"has\nnewline",
		"trailing space ",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, [][]string{row}))

	reader := csv.NewReader(&buf)
	parsed, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, row, parsed[0])
}

func TestDefangFieldTriggers(t *testing.T) {
	for _, trigger := range []string{"=", "+", "-", "@"} {
		value := trigger + "SUM(A1:A9)"
		assert.Equal(t, "\t"+value, DefangField(value), "trigger %q", trigger)
	}
}

func TestDefangFieldBenignValues(t *testing.T) {
	benign := []string{
		"",
		"plain text",
		"a=b",              // mid-string equals
		"1+1",              // mid-string plus
		"double-barreled",  // mid-string hyphen
		"user@example.com", // mid-string at
	}
	for _, value := range benign {
		assert.Equal(t, value, DefangField(value), "value %q", value)
	}
}

func TestWriteRowsDefangsAndRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, [][]string{{"=cmd|'/c calc'!A0", "Mrs O'Brien-Smith"}}))

	reader := csv.NewReader(&buf)
	parsed, err := reader.ReadAll()
	require.NoError(t, err)

	// Leading tab survives round-trip and keeps the first character
	// from being a formula trigger.
	assert.Equal(t, "\t=cmd|'/c calc'!A0", parsed[0][0])
	assert.Equal(t, "Mrs O'Brien-Smith", parsed[0][1])
}
