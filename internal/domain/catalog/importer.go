package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/course-planner/internal/domain/catalog/repository"
)

// CatalogRow is one line of a catalog seed CSV
type CatalogRow struct {
	Subject string `csv:"subject"`
	Number  string `csv:"number"`
	Title   string `csv:"title"`
	Units   string `csv:"units"`
}

// ImportResult summarizes a catalog seed run
type ImportResult struct {
	RowsTotal    int
	RowsImported int
	RowsFailed   int
	Errors       []string
}

// ImportCSV seeds the catalog from a CSV with a subject,number,title,units
// header. Bad rows are collected in the result and do not stop the run.
func ImportCSV(ctx context.Context, repo repository.CatalogRepository, r io.Reader) (*ImportResult, error) {
	var rows []CatalogRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	result := &ImportResult{RowsTotal: len(rows)}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rowNum := i + 2 // 1-indexed plus header

		c, err := row.toCourse()
		if err != nil {
			result.RowsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if err := repo.Create(ctx, c); err != nil {
			result.RowsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.RowsImported++
	}
	return result, nil
}

func (row CatalogRow) toCourse() (*repository.Course, error) {
	code := strings.TrimSpace(row.Subject) + " " + strings.TrimSpace(row.Number)
	subject, number, ok := SplitCode(code)
	if !ok {
		return nil, fmt.Errorf("invalid course code %q", code)
	}

	c := &repository.Course{Subject: subject, Number: number}
	if title := strings.TrimSpace(row.Title); title != "" {
		c.Title = &title
	}
	if units := strings.TrimSpace(row.Units); units != "" {
		d, err := decimal.NewFromString(units)
		if err != nil {
			return nil, fmt.Errorf("invalid units %q", units)
		}
		c.Units = decimal.NewNullDecimal(d)
	}
	return c, nil
}
