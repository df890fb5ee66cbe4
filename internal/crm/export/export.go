// Package export renders CRM lists as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/xuri/excelize/v2"
)

const (
	LeadSheet   = "Leads"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var leadHeaders = []string{
	"ID", "Name", "Email", "Phone", "City", "Country", "Program", "Source",
	"Status", "Study Level", "Counselor", "Converted", "Lost", "Lost Reason", "Created At",
}

// label prefers the enriched display label of field
func label(l *database.Lead, field, raw string) string {
	if v, ok := l.Labels[field]; ok && v != "" {
		return v
	}
	return raw
}

// Leads writes leads as an xlsx workbook with a single sheet
func Leads(w io.Writer, leads []*database.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LeadSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	header := make([]any, len(leadHeaders))
	for i, h := range leadHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(LeadSheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(leadHeaders), 1)
	if err := f.SetCellStyle(LeadSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, l := range leads {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			l.ID,
			l.Name,
			l.Email,
			l.Phone,
			l.City,
			label(l, "country", l.Country.Join(", ")),
			label(l, "program", l.Program.Join(", ")),
			label(l, "source", l.Source),
			label(l, "status", l.Status),
			label(l, "studyLevel", l.StudyLevel),
			l.CounselorID,
			l.IsConverted.Bool(),
			l.IsLost.Bool(),
			l.LostReason,
			l.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(LeadSheet, cell, &row); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(leadHeaders))
	if err := f.SetColWidth(LeadSheet, "A", lastCol, 18); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
