// Package export serializes a DFMEA forest into downloadable documents and
// hands them to a delivery collaborator (a directory or the clipboard).
//
// Every format starts from the same row sequence: each root flattened in
// pre-order, roots concatenated in forest order (see Snapshot).
package export

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	ErrNoData        = errors.New("no data to export")
	ErrUnknownFormat = errors.New("unknown export format")
	ErrBinaryPayload = errors.New("binary payload cannot be copied as text")
)

// Format identifies one export representation.
type Format string

const (
	FormatWorkbook         Format = "xlsx"
	FormatStructuredRecord Format = "json"
	FormatDelimitedText    Format = "csv"
	FormatMarkdown         Format = "markdown"
	FormatSQLite           Format = "sqlite"
	FormatDiagramSVG       Format = "svg"
	FormatDiagramPNG       Format = "png"
)

// AllFormats lists every format in menu order.
var AllFormats = []Format{
	FormatWorkbook,
	FormatStructuredRecord,
	FormatDelimitedText,
	FormatMarkdown,
	FormatSQLite,
	FormatDiagramSVG,
	FormatDiagramPNG,
}

// ParseFormat accepts a format name or a common alias ("excel", "md",
// "db", ...), case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "xlsx", "excel", "workbook":
		return FormatWorkbook, nil
	case "json", "records":
		return FormatStructuredRecord, nil
	case "csv", "delimited":
		return FormatDelimitedText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	case "svg":
		return FormatDiagramSVG, nil
	case "png":
		return FormatDiagramPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// IsValid returns true if the format is a recognized value
func (f Format) IsValid() bool {
	for _, known := range AllFormats {
		if f == known {
			return true
		}
	}
	return false
}

// Label returns a menu label.
func (f Format) Label() string {
	switch f {
	case FormatWorkbook:
		return "Excel workbook (.xlsx)"
	case FormatStructuredRecord:
		return "JSON records (.json)"
	case FormatDelimitedText:
		return "CSV (.csv)"
	case FormatMarkdown:
		return "Markdown report (.md)"
	case FormatSQLite:
		return "SQLite database (.sqlite3)"
	case FormatDiagramSVG:
		return "Structure diagram (.svg)"
	case FormatDiagramPNG:
		return "Structure diagram (.png)"
	}
	return string(f)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatWorkbook:
		return ".xlsx"
	case FormatStructuredRecord:
		return ".json"
	case FormatDelimitedText:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatSQLite:
		return ".sqlite3"
	case FormatDiagramSVG:
		return ".svg"
	case FormatDiagramPNG:
		return ".png"
	}
	return ""
}

// ContentType returns the MIME type of the encoded payload.
func (f Format) ContentType() string {
	switch f {
	case FormatWorkbook:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatStructuredRecord:
		return "application/json"
	case FormatDelimitedText:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	case FormatDiagramSVG:
		return "image/svg+xml"
	case FormatDiagramPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// IsBinary reports whether the payload is not plain text.
func (f Format) IsBinary() bool {
	switch f {
	case FormatWorkbook, FormatSQLite, FormatDiagramPNG:
		return true
	}
	return false
}

// DefaultFilename returns the suggested download name for the format.
func (f Format) DefaultFilename() string {
	return "dfmea_export" + f.Extension()
}

// Payload is one fully encoded export, ready for delivery.
type Payload struct {
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
}
