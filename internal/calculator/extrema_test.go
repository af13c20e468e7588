package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"PriceLabeler/internal/model"
)

var t0 = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

type pt struct {
	off   time.Duration
	close float64
}

func mkBars(points ...pt) []model.Bar {
	bars := make([]model.Bar, len(points))
	for i, p := range points {
		bars[i] = model.Bar{Time: t0.Add(p.off), Close: p.close}
	}
	return bars
}

func TestWindowStart_Alignment(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2022, 1, 1, 11, 59, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)},
		{time.Date(2022, 1, 1, 23, 1, 0, 0, time.UTC), time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)},
		{time.Date(1969, 12, 31, 13, 0, 0, 0, time.UTC), time.Date(1969, 12, 31, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := WindowStart(tt.in, 12*time.Hour, epoch)
		if !got.Equal(tt.want) {
			t.Errorf("WindowStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWindowExtrema_SingleWindow(t *testing.T) {
	bars := mkBars(pt{0, 100}, pt{time.Hour, 105}, pt{3 * time.Hour, 95})
	ext, err := WindowExtrema(bars, 12*time.Hour, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	if len(ext) != 1 {
		t.Fatalf("expected 1 window, got %d", len(ext))
	}
	if ext[0].MaxIdx != 1 || ext[0].MinIdx != 2 {
		t.Errorf("expected max=1 min=2, got max=%d min=%d", ext[0].MaxIdx, ext[0].MinIdx)
	}
	if ext[0].Count != 3 {
		t.Errorf("expected count 3, got %d", ext[0].Count)
	}
}

func TestWindowExtrema_SkipsEmptyWindows(t *testing.T) {
	// Bars at day 0 and day 3; the windows in between are empty.
	bars := mkBars(pt{time.Hour, 10}, pt{2 * time.Hour, 12}, pt{72 * time.Hour, 9}, pt{73 * time.Hour, 8})
	ext, err := WindowExtrema(bars, 12*time.Hour, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	if len(ext) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(ext))
	}
	if ext[1].MaxIdx != 2 || ext[1].MinIdx != 3 {
		t.Errorf("second window: got max=%d min=%d", ext[1].MaxIdx, ext[1].MinIdx)
	}
}

func TestWindowExtrema_TiesFirstOccurrence(t *testing.T) {
	bars := mkBars(pt{0, 50}, pt{time.Minute, 50}, pt{2 * time.Minute, 50})
	ext, err := WindowExtrema(bars, 12*time.Hour, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	if ext[0].MaxIdx != 0 || ext[0].MinIdx != 0 || !ext[0].Collides() {
		t.Errorf("flat window should collide on index 0, got %+v", ext[0])
	}
}

func TestWindowExtrema_NaN(t *testing.T) {
	bars := mkBars(pt{0, math.NaN()}, pt{time.Minute, 7}, pt{2 * time.Minute, 3})
	ext, err := WindowExtrema(bars, 12*time.Hour, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	if ext[0].MaxIdx != 1 || ext[0].MinIdx != 2 {
		t.Errorf("NaN should be skipped, got %+v", ext[0])
	}

	_, err = WindowExtrema(mkBars(pt{0, math.NaN()}), 12*time.Hour, time.Unix(0, 0).UTC())
	if !errors.Is(err, ErrNoValidClose) {
		t.Errorf("expected ErrNoValidClose, got %v", err)
	}
}

func TestWindowExtrema_InvalidSize(t *testing.T) {
	if _, err := WindowExtrema(nil, 0, time.Time{}); err == nil {
		t.Error("expected error for zero window size")
	}
	ext, err := WindowExtrema(nil, time.Hour, time.Time{})
	if err != nil || len(ext) != 0 {
		t.Errorf("empty input: got %v, %v", ext, err)
	}
}
