package collector

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"PriceLabeler/internal/model"
)

// CSVSource reads bars from a header-led CSV file.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSV source for the given file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) Load(_ context.Context) ([]model.Bar, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(rd io.Reader) ([]model.Bar, error) {
	r := csv.NewReader(bufio.NewReaderSize(rd, 1<<20))
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cm, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []model.Bar
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		b, err := cm.parseRow(rec, line, false)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, nil
}
