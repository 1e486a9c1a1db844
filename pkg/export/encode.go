package export

import (
	"context"
	"fmt"
	"time"

	"github.com/vanderheijden86/dfmea/pkg/debug"
	"github.com/vanderheijden86/dfmea/pkg/metrics"
)

// WorkbookLayout selects the sheet arrangement of the workbook export.
type WorkbookLayout string

const (
	// WorkbookSplit writes two sheets, "Functions" and "Failure Modes",
	// each with one row per component.
	WorkbookSplit WorkbookLayout = "split"
	// WorkbookSingle writes one "DFMEA" sheet with both lists.
	WorkbookSingle WorkbookLayout = "single"
)

// List join separators. The workbook and the delimited text deliberately
// differ.
const (
	DelimitedListSeparator = "; "
	WorkbookListSeparator  = ", "
)

// Options tune encoding. The zero value is usable.
type Options struct {
	Title          string
	WorkbookLayout WorkbookLayout
	// Now stamps generated reports. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Title:          "DFMEA",
		WorkbookLayout: WorkbookSplit,
		Now:            time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.WorkbookLayout == "" {
		o.WorkbookLayout = d.WorkbookLayout
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// Encode serializes records into format. Only the delimited text refuses
// an empty record list (ErrNoData); the other formats produce an empty
// document.
func Encode(ctx context.Context, format Format, records []Record, opts Options) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	defer metrics.Timer(metrics.ExportEncode)()
	start := time.Now()
	opts = opts.withDefaults()

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatStructuredRecord:
		data, err = encodeStructured(records)
	case FormatDelimitedText:
		data, err = encodeDelimited(records)
	case FormatWorkbook:
		data, err = encodeWorkbook(records, opts.WorkbookLayout)
	case FormatMarkdown:
		data, err = encodeMarkdown(records, opts)
	case FormatSQLite:
		data, err = encodeSQLite(ctx, records, opts)
	case FormatDiagramSVG:
		data, err = encodeDiagramSVG(records, opts)
	case FormatDiagramPNG:
		data, err = encodeDiagramPNG(records, opts)
	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	if err != nil {
		return Payload{}, fmt.Errorf("encode %s: %w", format, err)
	}

	debug.Log("export: encoded %s (%d records, %d bytes) in %v", format, len(records), len(data), time.Since(start))
	return Payload{
		Format:      format,
		Filename:    format.DefaultFilename(),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
