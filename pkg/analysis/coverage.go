// Package analysis computes summary statistics over the component tree and
// its relation matrices.
package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/vanderheijden86/dfmea/pkg/model"
)

// CoverageReport summarizes one relation matrix: which columns (functions or
// failure modes) are claimed by at least one component and which components
// relate to nothing.
type CoverageReport struct {
	Mode    model.ViewMode `json:"mode"`
	Columns []string       `json:"columns"` // Column labels in list order
	Rows    []string       `json:"rows"`    // Display paths in flatten order

	ColumnCounts []int `json:"column_counts"` // Rows marked per column
	RowCounts    []int `json:"row_counts"`    // Columns marked per row

	UncoveredColumns []string `json:"uncovered_columns,omitempty"` // Columns no row marks
	UnrelatedRows    []string `json:"unrelated_rows,omitempty"`    // Rows that mark no column

	Relations int     `json:"relations"` // Marked cells
	Density   float64 `json:"density"`   // Relations / (rows * columns), 0 when empty
}

// Coverage builds the report for a matrix projection. Structure-mode and
// empty projections produce a zero report with Mode set.
func Coverage(p model.Projection) CoverageReport {
	report := CoverageReport{Mode: p.Mode}
	if !p.IsMatrix() {
		return report
	}

	report.Columns = p.ColumnLabels()
	report.Rows = make([]string, len(p.Rows))
	for i, row := range p.Rows {
		report.Rows[i] = row.Name
	}
	report.ColumnCounts = make([]int, len(p.Columns))
	report.RowCounts = make([]int, len(p.Rows))

	r, c := len(p.Rows), len(p.Columns)
	if r == 0 || c == 0 {
		// mat.NewDense rejects zero dimensions.
		report.UnrelatedRows = append(report.UnrelatedRows, report.Rows...)
		report.UncoveredColumns = append(report.UncoveredColumns, report.Columns...)
		return report
	}

	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if p.Cell(i, j) {
				m.Set(i, j, 1)
			}
		}
	}

	for j := 0; j < c; j++ {
		n := int(mat.Sum(m.ColView(j)))
		report.ColumnCounts[j] = n
		if n == 0 {
			report.UncoveredColumns = append(report.UncoveredColumns, report.Columns[j])
		}
	}
	for i := 0; i < r; i++ {
		n := int(mat.Sum(m.RowView(i)))
		report.RowCounts[i] = n
		if n == 0 {
			report.UnrelatedRows = append(report.UnrelatedRows, report.Rows[i])
		}
	}

	report.Relations = int(mat.Sum(m))
	report.Density = float64(report.Relations) / float64(r*c)
	return report
}

// Summary renders a one-line footer such as
// "4/12 cells (33%) · uncovered: Leak".
func (r CoverageReport) Summary() string {
	if len(r.Columns) == 0 || len(r.Rows) == 0 {
		return fmt.Sprintf("no %s columns", strings.ToLower(r.Mode.String()))
	}
	s := fmt.Sprintf("%d/%d cells (%.0f%%)", r.Relations, len(r.Rows)*len(r.Columns), r.Density*100)
	if len(r.UncoveredColumns) > 0 {
		s += " · uncovered: " + strings.Join(r.UncoveredColumns, ", ")
	}
	return s
}
