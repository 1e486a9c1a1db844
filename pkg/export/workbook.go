package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook export.
const (
	SheetFunctions    = "Functions"
	SheetFailureModes = "Failure Modes"
	SheetSingle       = "DFMEA"
)

type sheetSpec struct {
	name   string
	header []string
	row    func(Record) []string
}

func workbookSheets(layout WorkbookLayout) ([]sheetSpec, error) {
	join := func(list []string) string { return strings.Join(list, WorkbookListSeparator) }
	switch layout {
	case WorkbookSplit:
		return []sheetSpec{
			{
				name:   SheetFunctions,
				header: []string{"Component", "Function"},
				row:    func(r Record) []string { return []string{r.Name, join(r.Functions)} },
			},
			{
				name:   SheetFailureModes,
				header: []string{"Component", "FailureMode"},
				row:    func(r Record) []string { return []string{r.Name, join(r.FailureModes)} },
			},
		}, nil
	case WorkbookSingle:
		return []sheetSpec{
			{
				name:   SheetSingle,
				header: []string{"Component", "Functions", "FailureModes"},
				row: func(r Record) []string {
					return []string{r.Name, join(r.Functions), join(r.FailureModes)}
				},
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown workbook layout %q", layout)
}

// encodeWorkbook writes an .xlsx document. List fields are joined with
// WorkbookListSeparator in every sheet.
func encodeWorkbook(records []Record, layout WorkbookLayout) ([]byte, error) {
	sheets, err := workbookSheets(layout)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("add sheet %q: %w", sheet.name, err)
		}
		if err := writeSheetRow(f, sheet.name, 1, sheet.header); err != nil {
			return nil, err
		}
		for r, rec := range records {
			if err := writeSheetRow(f, sheet.name, r+2, sheet.row(rec)); err != nil {
				return nil, err
			}
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}
