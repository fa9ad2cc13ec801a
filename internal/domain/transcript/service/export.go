package service

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
)

const xlsxSheet = "Courses"

type csvRow struct {
	Code     string `csv:"code"`
	Title    string `csv:"title"`
	Units    string `csv:"units"`
	Grade    string `csv:"grade"`
	Semester string `csv:"semester"`
}

func toRows(courses []repository.ParsedCourse) []csvRow {
	rows := make([]csvRow, 0, len(courses))
	for _, c := range courses {
		row := csvRow{Code: c.Code, Grade: c.Grade, Semester: c.SemesterText}
		if c.Title != nil {
			row.Title = *c.Title
		}
		if c.Units.Valid {
			row.Units = c.Units.Decimal.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportCSV writes courses as CSV with a header row
func ExportCSV(w io.Writer, courses []repository.ParsedCourse) error {
	rows := toRows(courses)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// ExportXLSX writes courses to a single-sheet workbook. Units are stored as
// numbers so the sheet can total them.
func ExportXLSX(w io.Writer, courses []repository.ParsedCourse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header := []any{"Code", "Title", "Units", "Grade", "Semester"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, c := range courses {
		row := []any{c.Code, "", nil, c.Grade, c.SemesterText}
		if c.Title != nil {
			row[1] = *c.Title
		}
		if c.Units.Valid {
			row[2] = c.Units.Decimal.InexactFloat64()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
