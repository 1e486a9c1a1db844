package export

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/dfmea/pkg/debug"
	"github.com/vanderheijden86/dfmea/pkg/metrics"
)

// maxParallelEncodes bounds concurrent encoders in ExportAll.
const maxParallelEncodes = 4

// Result reports one delivered export.
type Result struct {
	Format   Format
	Location string
	Bytes    int
}

// Exporter encodes records and hands the payload to a Deliverer.
type Exporter struct {
	Deliverer Deliverer
	Options   Options
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string, opts Options) *Exporter {
	return &Exporter{
		Deliverer: DirDeliverer{Dir: dir},
		Options:   opts,
	}
}

// Export encodes records as format and delivers the payload. Nothing is
// delivered when encoding fails.
func (e *Exporter) Export(ctx context.Context, records []Record, format Format) (Result, error) {
	p, err := Encode(ctx, format, records, e.Options)
	if err != nil {
		return Result{}, err
	}
	return e.deliver(ctx, p)
}

// ExportAll encodes every format concurrently and delivers only when all
// encodes succeed. The first error wins; results keep the order of formats.
func (e *Exporter) ExportAll(ctx context.Context, records []Record, formats []Format) ([]Result, error) {
	defer debug.LogEnterExit(fmt.Sprintf("ExportAll(%d formats)", len(formats)))()
	debug.LogIf(len(records) == 0, "export: ExportAll on an empty forest")

	payloads := make([]Payload, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelEncodes)
	for i, f := range formats {
		g.Go(func() error {
			p, err := Encode(gctx, f, records, e.Options)
			if err != nil {
				return err
			}
			payloads[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]Result, len(payloads))
	g, gctx = errgroup.WithContext(ctx)
	for i, p := range payloads {
		g.Go(func() error {
			r, err := e.deliver(gctx, p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) deliver(ctx context.Context, p Payload) (Result, error) {
	defer metrics.Timer(metrics.ExportDeliver)()
	d := e.Deliverer
	if d == nil {
		d = DirDeliverer{}
	}
	loc, err := d.Deliver(ctx, p)
	if err != nil {
		return Result{}, fmt.Errorf("deliver %s: %w", p.Format, err)
	}
	debug.Log("export: delivered %s to %s", p.Format, loc)
	return Result{Format: p.Format, Location: loc, Bytes: len(p.Data)}, nil
}
