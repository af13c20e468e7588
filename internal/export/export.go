package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"PriceLabeler/internal/model"

	"github.com/xuri/excelize/v2"
)

const sheetName = "labels"

var header = []string{"time", "open", "high", "low", "close", "volume", "position"}

// WriteLabels writes the labeled series to path; the format follows the extension (.csv or .xlsx).
func WriteLabels(series *model.PriceSeries, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return WriteCSV(series, path)
	case ".xlsx":
		return WriteXLSX(series, path)
	}
	return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
}

// WriteCSV writes one row per bar with its label.
func WriteCSV(series *model.PriceSeries, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range series.Bars {
		if err := w.Write(row(series, i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the same rows to a single "labels" sheet.
func WriteXLSX(series *model.PriceSeries, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", toCells(header)); err != nil {
		return err
	}
	for i, b := range series.Bars {
		cellName, _ := excelize.CoordinatesToCellName(1, i+2)
		cells := []interface{}{
			b.Time.UTC().Format(time.RFC3339),
			b.Open, b.High, b.Low, b.Close, b.Volume,
			labelAt(series, i),
		}
		if err := sw.SetRow(cellName, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func row(series *model.PriceSeries, i int) []string {
	b := series.Bars[i]
	return []string{
		b.Time.UTC().Format(time.RFC3339),
		formatF(b.Open), formatF(b.High), formatF(b.Low), formatF(b.Close), formatF(b.Volume),
		labelAt(series, i),
	}
}

func labelAt(series *model.PriceSeries, i int) string {
	if i >= len(series.Labels) {
		return ""
	}
	return string(series.Labels[i])
}

func toCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
