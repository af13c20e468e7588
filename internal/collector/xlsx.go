package collector

import (
	"context"
	"fmt"
	"time"

	"PriceLabeler/internal/model"

	"github.com/xuri/excelize/v2"
)

// XLSXSource reads bars from a worksheet whose first row is a header.
type XLSXSource struct {
	Path  string
	Sheet string // first sheet when empty
}

// NewXLSXSource creates an Excel source.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{Path: path, Sheet: sheet}
}

func (s *XLSXSource) Name() string { return "xlsx" }

func (s *XLSXSource) Load(_ context.Context) ([]model.Bar, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	cm, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}
	bars := make([]model.Bar, 0, len(rows)-1)
	for i, rec := range rows[1:] {
		if len(rec) == 0 {
			continue
		}
		b, err := cm.parseRow(rec, i+2, true)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func excelSerialToTime(n float64) time.Time {
	t, err := excelize.ExcelDateToTime(n, false)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
