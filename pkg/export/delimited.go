package export

import (
	"bytes"
	"strings"
)

// DelimitedHeader is the header row of the delimited text export.
const DelimitedHeader = "Component,Functions,Failure Modes"

// encodeDelimited writes one row per record:
//
//	name,"f1; f2","fm1; fm2"
//
// The two list columns are always quoted. Fields containing a quote, comma
// or line break are quoted with embedded quotes doubled (RFC 4180), so
// every row parses back to exactly three fields.
func encodeDelimited(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}
	var buf bytes.Buffer
	buf.WriteString(DelimitedHeader)
	buf.WriteByte('\n')
	for _, rec := range records {
		buf.WriteString(quoteField(rec.Name, false))
		buf.WriteByte(',')
		buf.WriteString(quoteField(strings.Join(rec.Functions, DelimitedListSeparator), true))
		buf.WriteByte(',')
		buf.WriteString(quoteField(strings.Join(rec.FailureModes, DelimitedListSeparator), true))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func quoteField(s string, always bool) string {
	needs := always ||
		strings.ContainsAny(s, "\",\r\n") ||
		strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ")
	if !needs {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
