package export

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestWriteSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dfmea.sqlite3")
	records := Snapshot(systemForest(t).Roots())
	if err := WriteSQLite(context.Background(), dbPath, records, testOptions()); err != nil {
		t.Fatalf("WriteSQLite: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM components`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != len(records) {
		t.Errorf("components = %d, want %d", count, len(records))
	}

	var parent string
	err = db.QueryRow(`
		SELECT p.path FROM components c JOIN components p ON p.id = c.parent_id
		WHERE c.path = ?`, "Pump > Motor > Bearing").Scan(&parent)
	if err != nil {
		t.Fatal(err)
	}
	if parent != "Pump > Motor" {
		t.Errorf("bearing parent = %q", parent)
	}

	var roots int
	if err := db.QueryRow(`SELECT COUNT(*) FROM components WHERE parent_id IS NULL`).Scan(&roots); err != nil {
		t.Fatal(err)
	}
	if roots != 2 {
		t.Errorf("roots = %d, want 2", roots)
	}

	rows, err := db.Query(`
		SELECT e.label FROM entries e JOIN components c ON c.id = e.component_id
		WHERE c.path = 'Valve' AND e.kind = 'failure_mode' ORDER BY e.position`)
	if err != nil {
		t.Fatal(err)
	}
	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			t.Fatal(err)
		}
		labels = append(labels, l)
	}
	rows.Close()
	if strings.Join(labels, "|") != "Stuck|Sticky, slow" {
		t.Errorf("valve failure modes = %v", labels)
	}

	var value int
	err = db.QueryRow(`
		SELECT r.value FROM relations r JOIN components c ON c.id = r.component_id
		WHERE c.path = 'Pump > Seal' AND r.label = 'Leak'`).Scan(&value)
	if err != nil {
		t.Fatal(err)
	}
	if value != 1 {
		t.Errorf("seal/leak = %d, want 1", value)
	}

	var title string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'title'`).Scan(&title); err != nil {
		t.Fatal(err)
	}
	if title != "Test DFMEA" {
		t.Errorf("title = %q", title)
	}
}

func TestEncode_SQLiteBytes(t *testing.T) {
	p, err := Encode(context.Background(), FormatSQLite, Snapshot(pumpForest(t).Roots()), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(p.Data, []byte("SQLite format 3\x00")) {
		t.Errorf("payload is not a SQLite database: % x", p.Data[:min(16, len(p.Data))])
	}
}

func TestEncode_Diagrams(t *testing.T) {
	records := Snapshot(systemForest(t).Roots())

	svgPayload, err := Encode(context.Background(), FormatDiagramSVG, records, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	doc := string(svgPayload.Data)
	for _, want := range []string{"<svg", "Test DFMEA", "Bearing", "Valve", "components: 5  roots: 2", "<polyline"} {
		if !strings.Contains(doc, want) {
			t.Errorf("svg missing %q", want)
		}
	}

	pngPayload, err := Encode(context.Background(), FormatDiagramPNG, records, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pngPayload.Data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("payload is not a PNG")
	}
}

func TestBuildDiagramLayout(t *testing.T) {
	layout := buildDiagramLayout(Snapshot(systemForest(t).Roots()), "x")
	parents := []int{-1, 0, 1, 0, -1}
	if len(layout.Nodes) != len(parents) {
		t.Fatalf("nodes = %d", len(layout.Nodes))
	}
	for i, want := range parents {
		if got := layout.Nodes[i].Parent; got != want {
			t.Errorf("node %d parent = %d, want %d", i, got, want)
		}
		if i > 0 && layout.Nodes[i].Y <= layout.Nodes[i-1].Y {
			t.Errorf("node %d is not below node %d", i, i-1)
		}
	}
	if layout.Nodes[2].X <= layout.Nodes[1].X {
		t.Error("deeper nodes should be indented")
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Pump", 10, "Pump"},
		{"Centrifugal pump", 8, "Centr..."},
		{"Pump", 2, "Pu"},
		{"Pump", 0, ""},
		{"Pümpé", 4, "P..."},
	}
	for _, tt := range tests {
		if got := truncateLabel(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateLabel(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestDirDeliverer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := DirDeliverer{Dir: dir}
	loc, err := d.Deliver(context.Background(), Payload{
		Format:   FormatDelimitedText,
		Filename: "../escape.csv",
		Data:     []byte("a,b\n"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if loc != filepath.Join(dir, "escape.csv") {
		t.Errorf("location = %q", loc)
	}
	data, err := os.ReadFile(loc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n" {
		t.Errorf("content = %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestClipboardDeliverer(t *testing.T) {
	var copied string
	c := ClipboardDeliverer{write: func(s string) error { copied = s; return nil }}

	loc, err := c.Deliver(context.Background(), Payload{Format: FormatDelimitedText, Data: []byte("x")})
	if err != nil || loc != "clipboard" || copied != "x" {
		t.Errorf("Deliver = %q, %v (copied %q)", loc, err, copied)
	}

	_, err = c.Deliver(context.Background(), Payload{Format: FormatWorkbook, Data: []byte("PK")})
	if !errors.Is(err, ErrBinaryPayload) {
		t.Errorf("binary err = %v", err)
	}

	failing := ClipboardDeliverer{write: func(string) error { return errors.New("no display") }}
	if _, err := failing.Deliver(context.Background(), Payload{Format: FormatMarkdown}); err == nil {
		t.Error("expected clipboard failure")
	}
}

type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []Format
}

func (r *recordingDeliverer) Deliver(_ context.Context, p Payload) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, p.Format)
	return string(p.Format), nil
}

func TestExporter_Export(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, testOptions())
	res, err := e.Export(context.Background(), Snapshot(pumpForest(t).Roots()), FormatDelimitedText)
	if err != nil {
		t.Fatal(err)
	}
	if res.Location != filepath.Join(dir, "dfmea_export.csv") || res.Bytes == 0 {
		t.Errorf("result = %+v", res)
	}

	_, err = e.Export(context.Background(), nil, FormatDelimitedText)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("empty export err = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "dfmea_export.json")); !os.IsNotExist(statErr) {
		t.Error("nothing else should have been written")
	}
}

func TestExporter_ExportAll(t *testing.T) {
	rec := &recordingDeliverer{}
	e := &Exporter{Deliverer: rec, Options: testOptions()}

	formats := []Format{FormatStructuredRecord, FormatDelimitedText, FormatMarkdown}
	results, err := e.ExportAll(context.Background(), Snapshot(pumpForest(t).Roots()), formats)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Format != formats[i] || r.Location != string(formats[i]) {
			t.Errorf("result %d = %+v", i, r)
		}
	}
	if len(rec.delivered) != len(formats) {
		t.Errorf("delivered %v", rec.delivered)
	}
}

func TestExporter_ExportAllIsAllOrNothing(t *testing.T) {
	rec := &recordingDeliverer{}
	e := &Exporter{Deliverer: rec, Options: testOptions()}

	// An empty forest makes the delimited text fail; JSON alone would succeed.
	_, err := e.ExportAll(context.Background(), nil, []Format{FormatStructuredRecord, FormatDelimitedText})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if len(rec.delivered) != 0 {
		t.Errorf("delivered %v despite a failed encode", rec.delivered)
	}
}
