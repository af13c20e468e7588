package collector

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"PriceLabeler/internal/model"
)

// ErrNoCloseColumn is returned when a table has no close column.
var ErrNoCloseColumn = errors.New("table has no close column")

var timeColumns = []string{"time", "timestamp", "datetime", "date", "open_time", "index"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// columnMap resolves the positions of the known columns in a header row.
type columnMap struct {
	time, open, high, low, close, volume int
}

func mapColumns(header []string) (columnMap, error) {
	cm := columnMap{time: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch name {
		case "open":
			cm.open = i
		case "high":
			cm.high = i
		case "low":
			cm.low = i
		case "close":
			cm.close = i
		case "volume":
			cm.volume = i
		default:
			if cm.time < 0 {
				for _, tc := range timeColumns {
					if name == tc {
						cm.time = i
						break
					}
				}
			}
		}
	}
	if cm.close < 0 {
		return cm, ErrNoCloseColumn
	}
	if cm.time < 0 {
		return cm, errors.New("table has no time column")
	}
	return cm, nil
}

// parseRow turns one data row into a bar. lineNo is used only for error messages.
func (cm columnMap) parseRow(rec []string, lineNo int, serialDates bool) (model.Bar, error) {
	var b model.Bar
	ts, err := parseTime(cell(rec, cm.time), serialDates)
	if err != nil {
		return b, fmt.Errorf("line %d: %w", lineNo, err)
	}
	b.Time = ts
	if b.Close, err = parseFloat(cell(rec, cm.close)); err != nil {
		return b, fmt.Errorf("line %d: close: %w", lineNo, err)
	}
	for _, f := range []struct {
		idx int
		dst *float64
	}{{cm.open, &b.Open}, {cm.high, &b.High}, {cm.low, &b.Low}, {cm.volume, &b.Volume}} {
		if f.idx < 0 {
			continue
		}
		if *f.dst, err = parseFloat(cell(rec, f.idx)); err != nil {
			return b, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return b, nil
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

// parseFloat maps an empty cell to NaN, the same way a missing value is treated downstream.
func parseFloat(s string) (float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseTime(s string, serialDates bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	switch {
	case serialDates && n < 1e6:
		return excelSerialToTime(n), nil
	case n >= 1e17:
		return time.Unix(0, int64(n)).UTC(), nil
	case n >= 1e14:
		return time.UnixMicro(int64(n)).UTC(), nil
	case n >= 1e11:
		return time.UnixMilli(int64(n)).UTC(), nil
	default:
		return time.Unix(int64(n), 0).UTC(), nil
	}
}
