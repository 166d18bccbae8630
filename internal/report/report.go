// Package report builds the teacher-facing xlsx exports: raw study logs and
// per-student progress summaries.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/oneday-english/oneday/internal/ledger"
)

const (
	logSheet      = "Study Logs"
	progressSheet = "Progress"
)

// StudentProgress is one row of the progress sheet.
type StudentProgress struct {
	Email         string
	Name          string
	CompletedDays int
	TotalDays     int
	Stars         int
}

// Workbook renders study-log records and per-student progress into a
// spreadsheet with one sheet per view. The caller owns the returned file and
// should Close it after writing.
func Workbook(records []ledger.Record, progress []StudentProgress) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", logSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeLogSheet(f, records); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(progressSheet); err != nil {
		return nil, fmt.Errorf("add progress sheet: %w", err)
	}
	if err := writeProgressSheet(f, progress); err != nil {
		return nil, err
	}

	return f, nil
}

func writeLogSheet(f *excelize.File, records []ledger.Record) error {
	header := []any{
		"Date", "Student", "Name", "Class", "Activity", "Title", "Level", "Score", "Questions",
	}
	if err := f.SetSheetRow(logSheet, "A1", &header); err != nil {
		return fmt.Errorf("write log header: %w", err)
	}

	for i, rec := range records {
		row := []any{
			rec.CreatedAt.Format("2006-01-02 15:04"),
			rec.StudentEmail,
			rec.StudentName,
			rec.ClassName,
			string(rec.ActivityType),
			rec.ActivityTitle,
			rec.Level,
			rec.Score,
			rec.TotalQuestions,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(logSheet, cell, &row); err != nil {
			return fmt.Errorf("write log row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeProgressSheet(f *excelize.File, progress []StudentProgress) error {
	header := []any{"Student", "Name", "Completed Days", "Total Days", "Stars"}
	if err := f.SetSheetRow(progressSheet, "A1", &header); err != nil {
		return fmt.Errorf("write progress header: %w", err)
	}

	for i, p := range progress {
		row := []any{p.Email, p.Name, p.CompletedDays, p.TotalDays, p.Stars}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(progressSheet, cell, &row); err != nil {
			return fmt.Errorf("write progress row %d: %w", i+1, err)
		}
	}
	return nil
}
