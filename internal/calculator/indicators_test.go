package calculator

import (
	"math"
	"testing"
)

func TestSMASeries(t *testing.T) {
	got, err := SMASeries([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("expected NaN warmup, got %v", got[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(got[i+2]-w) > 1e-9 {
			t.Errorf("sma[%d] = %f, want %f", i+2, got[i+2], w)
		}
	}
	if _, err := SMASeries(nil, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestStdSeries(t *testing.T) {
	got, err := StdSeries([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got[7]-2) > 1e-9 {
		t.Errorf("std = %f, want 2", got[7])
	}
}

func TestRSISeries(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	got, err := RSISeries(rising, 14)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[13]) {
		t.Errorf("expected NaN before first full period, got %f", got[13])
	}
	if got[19] != 100 {
		t.Errorf("monotonic rise should give RSI 100, got %f", got[19])
	}

	short, _ := RSISeries(rising[:5], 14)
	for i, v := range short {
		if !math.IsNaN(v) {
			t.Errorf("rsi[%d] = %f with insufficient data, want NaN", i, v)
		}
	}
}

func TestSMASeries_NaNWindow(t *testing.T) {
	got, err := SMASeries([]float64{math.NaN(), 2, 4, 6}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[1]) {
		t.Errorf("window with NaN should be NaN, got %f", got[1])
	}
	if got[2] != 3 || got[3] != 5 {
		t.Errorf("NaN should leave the window, got %v", got)
	}
}

func TestRSISeries_NaN(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3)
	}
	closes[20] = math.NaN()

	got, err := RSISeries(closes, 14)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{20, 21} {
		if !math.IsNaN(got[i]) {
			t.Errorf("rsi[%d] touches a NaN close, got %f", i, got[i])
		}
	}
	for i := 22; i < len(got); i++ {
		if math.IsNaN(got[i]) || got[i] < 0 || got[i] > 100 {
			t.Fatalf("rsi[%d] = %f, want a value in [0,100]", i, got[i])
		}
	}

	// A gap inside the seed period delays the first value by one bar.
	closes[20] = 100
	closes[5] = math.NaN()
	got, _ = RSISeries(closes, 14)
	if !math.IsNaN(got[15]) || math.IsNaN(got[16]) {
		t.Errorf("expected first value at 16, got rsi[15]=%f rsi[16]=%f", got[15], got[16])
	}
}
