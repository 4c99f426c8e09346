package patient

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	ExportSheet       = "Sheet1"
	ExportFilename    = "patient_data.xlsx"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportColumns is the header row of the export, in order.
var ExportColumns = []string{"ID", "Name", "Age", "Gender", "Contact", "KYC", "Concern"}

// Workbook is a serialized xlsx file and the number of data rows in it.
type Workbook struct {
	Data []byte
	Rows int
}

// BuildWorkbook writes a header row and one row per patient into a new
// in-memory workbook.
func BuildWorkbook(patients []Patient) (*Workbook, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, p := range patients {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := []interface{}{p.ID, p.Name, p.Age, p.Gender, p.Contact, p.KYC, p.Concern}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write patient %d: %w", p.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return &Workbook{Data: buf.Bytes(), Rows: len(patients)}, nil
}
