package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXLoader reads one table per worksheet, in workbook order. Merged ranges
// are flattened by repeating the top-left text over the whole range.
type XLSXLoader struct {
	// ParagraphSheet, when set, names a sheet whose first column holds the
	// report's running text instead of a table.
	ParagraphSheet string
}

func (l XLSXLoader) Load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	doc := &Document{Path: path}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if l.ParagraphSheet != "" && sheet == l.ParagraphSheet {
			for _, r := range rows {
				if len(r) > 0 && strings.TrimSpace(r[0]) != "" {
					doc.Paragraphs = append(doc.Paragraphs, strings.TrimSpace(r[0]))
				}
			}
			continue
		}
		t := rectangular(rows)
		merged, err := f.GetMergeCells(sheet)
		if err != nil {
			return nil, fmt.Errorf("read merged cells %s: %w", sheet, err)
		}
		if err := flattenMerged(&t, merged); err != nil {
			return nil, fmt.Errorf("flatten %s: %w", sheet, err)
		}
		doc.Tables = append(doc.Tables, t)
	}
	return doc, nil
}

// flattenMerged repeats each merged value over its range, clipped to the
// data extent GetRows reported so a sheet-wide merge cannot inflate the grid.
func flattenMerged(t *Table, merged []excelize.MergeCell) error {
	rows, cols := t.NumRows(), t.NumCols()
	for _, m := range merged {
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return err
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return err
		}
		r2, c2 = min(r2, rows), min(c2, cols)
		value := strings.TrimSpace(m.GetCellValue())
		for r := r1 - 1; r < r2; r++ {
			for c := c1 - 1; c < c2; c++ {
				t.Rows[r][c] = value
			}
		}
	}
	return nil
}
