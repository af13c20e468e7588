package labeler

import (
	"errors"
	"testing"
	"time"

	"PriceLabeler/internal/calculator"
	"PriceLabeler/internal/model"
)

var t0 = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

func series(points ...float64) *model.PriceSeries {
	return seriesAt(time.Hour, points...)
}

func seriesAt(step time.Duration, points ...float64) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: "TEST"}
	for i, p := range points {
		s.Bars = append(s.Bars, model.Bar{Time: t0.Add(time.Duration(i) * step), Close: p})
	}
	return s
}

func mustNew(t *testing.T, opts Options) *Labeler {
	t.Helper()
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestLabel_ThreeBarWindow(t *testing.T) {
	s := &model.PriceSeries{Bars: []model.Bar{
		{Time: t0, Close: 100},
		{Time: t0.Add(time.Hour), Close: 105},
		{Time: t0.Add(3 * time.Hour), Close: 95},
	}}
	out, sum, err := mustNew(t, Options{}).Label(s)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Label{model.LabelNone, model.LabelShort, model.LabelLong}
	for i, w := range want {
		if out.Labels[i] != w {
			t.Errorf("bar %d: expected %s, got %s", i, w, out.Labels[i])
		}
	}
	if sum.Windows != 1 || sum.Longs != 1 || sum.Shorts != 1 || sum.Collisions != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestLabel_SingleBarLongWins(t *testing.T) {
	out, sum, err := mustNew(t, Options{}).Label(series(100))
	if err != nil {
		t.Fatal(err)
	}
	if out.Labels[0] != model.LabelLong {
		t.Errorf("expected Long, got %s", out.Labels[0])
	}
	if sum.Collisions != 1 || sum.Shorts != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestLabel_TiePolicyShortWins(t *testing.T) {
	out, _, err := mustNew(t, Options{TiePolicy: model.TieShortWins}).Label(series(100))
	if err != nil {
		t.Fatal(err)
	}
	if out.Labels[0] != model.LabelShort {
		t.Errorf("expected Short, got %s", out.Labels[0])
	}

	// Policy only matters on collisions.
	out, _, err = mustNew(t, Options{TiePolicy: model.TieShortWins}).Label(series(100, 105, 95))
	if err != nil {
		t.Fatal(err)
	}
	if out.Labels[1] != model.LabelShort || out.Labels[2] != model.LabelLong {
		t.Errorf("unexpected labels %v", out.Labels)
	}
}

func TestLabel_FlatWindow(t *testing.T) {
	out, _, err := mustNew(t, Options{}).Label(series(50, 50, 50, 50))
	if err != nil {
		t.Fatal(err)
	}
	if out.Labels[0] != model.LabelLong {
		t.Errorf("first bar should be Long, got %s", out.Labels[0])
	}
	for i := 1; i < 4; i++ {
		if out.Labels[i] != model.LabelNone {
			t.Errorf("bar %d should be unlabeled, got %s", i, out.Labels[i])
		}
	}
}

func TestLabel_TwoWindows(t *testing.T) {
	// 3 bars at 00:00-02:00 and 3 bars at 12:00-14:00
	s := &model.PriceSeries{}
	closes := []float64{10, 12, 11, 20, 18, 19}
	offsets := []time.Duration{0, time.Hour, 2 * time.Hour, 12 * time.Hour, 13 * time.Hour, 14 * time.Hour}
	for i := range closes {
		s.Bars = append(s.Bars, model.Bar{Time: t0.Add(offsets[i]), Close: closes[i]})
	}
	out, sum, err := mustNew(t, Options{}).Label(s)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Longs != 2 || sum.Shorts != 2 || sum.Windows != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	want := []model.Label{model.LabelLong, model.LabelShort, model.LabelNone, model.LabelShort, model.LabelLong, model.LabelNone}
	for i, w := range want {
		if out.Labels[i] != w {
			t.Errorf("bar %d: expected %s, got %s", i, w, out.Labels[i])
		}
	}
}

func TestLabel_ExtremaBoundEveryBar(t *testing.T) {
	closes := make([]float64, 0, 24*60)
	for i := 0; i < 24*60; i++ {
		closes = append(closes, float64((i*7919)%1000)+0.5*float64(i%3))
	}
	s := seriesAt(time.Minute, closes...)
	l := mustNew(t, Options{})
	out, _, err := l.Label(s)
	if err != nil {
		t.Fatal(err)
	}

	byWindow := map[time.Time][]int{}
	for i, b := range out.Bars {
		w := calculator.WindowStart(b.Time, DefaultWindow, l.Options().Origin)
		byWindow[w] = append(byWindow[w], i)
	}
	for w, idx := range byWindow {
		var longs, shorts []int
		for _, i := range idx {
			switch out.Labels[i] {
			case model.LabelLong:
				longs = append(longs, i)
			case model.LabelShort:
				shorts = append(shorts, i)
			}
		}
		if len(longs) != 1 || len(shorts) != 1 {
			t.Fatalf("window %s: expected one Long and one Short, got %d/%d", w, len(longs), len(shorts))
		}
		for _, i := range idx {
			if out.Bars[shorts[0]].Close < out.Bars[i].Close {
				t.Errorf("window %s: Short close %f below bar %d close %f", w, out.Bars[shorts[0]].Close, i, out.Bars[i].Close)
			}
			if out.Bars[longs[0]].Close > out.Bars[i].Close {
				t.Errorf("window %s: Long close %f above bar %d close %f", w, out.Bars[longs[0]].Close, i, out.Bars[i].Close)
			}
		}
	}
}

func TestLabel_Idempotent(t *testing.T) {
	l := mustNew(t, Options{})
	first, _, err := l.Label(series(3, 1, 4, 1, 5, 9, 2, 6))
	if err != nil {
		t.Fatal(err)
	}
	// Scramble the existing column; relabeling must ignore it.
	for i := range first.Labels {
		first.Labels[i] = model.LabelShort
	}
	again, _, err := l.Label(first)
	if err != nil {
		t.Fatal(err)
	}
	fresh, _, _ := l.Label(series(3, 1, 4, 1, 5, 9, 2, 6))
	for i := range fresh.Labels {
		if again.Labels[i] != fresh.Labels[i] {
			t.Errorf("bar %d: relabel gave %s, want %s", i, again.Labels[i], fresh.Labels[i])
		}
	}
}

func TestLabel_DoesNotMutateInput(t *testing.T) {
	in := series(1, 2, 3)
	if _, _, err := mustNew(t, Options{}).Label(in); err != nil {
		t.Fatal(err)
	}
	if in.Labels != nil {
		t.Errorf("input labels were mutated: %v", in.Labels)
	}
}

func TestLabel_Empty(t *testing.T) {
	out, sum, err := mustNew(t, Options{}).Label(&model.PriceSeries{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Labels == nil || len(out.Labels) != 0 {
		t.Errorf("expected empty non-nil label column, got %#v", out.Labels)
	}
	if sum.Windows != 0 {
		t.Errorf("expected no windows, got %d", sum.Windows)
	}
}

func TestLabel_Unordered(t *testing.T) {
	s := &model.PriceSeries{Bars: []model.Bar{
		{Time: t0.Add(time.Hour), Close: 1},
		{Time: t0, Close: 2},
	}}
	_, _, err := mustNew(t, Options{}).Label(s)
	if !errors.Is(err, ErrUnordered) {
		t.Errorf("expected ErrUnordered, got %v", err)
	}
}

func TestLabel_CustomFinder(t *testing.T) {
	l := mustNew(t, Options{})
	l.Finder = ExtremaFunc(func(bars []model.Bar, _ time.Duration, _ time.Time) ([]calculator.Extremum, error) {
		return []calculator.Extremum{{MaxIdx: 0, MinIdx: len(bars) - 1, Count: len(bars)}}, nil
	})
	out, _, err := l.Label(series(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if out.Labels[0] != model.LabelShort || out.Labels[2] != model.LabelLong {
		t.Errorf("custom finder ignored: %v", out.Labels)
	}

	l.Finder = ExtremaFunc(func([]model.Bar, time.Duration, time.Time) ([]calculator.Extremum, error) {
		return nil, calculator.ErrNoValidClose
	})
	if _, _, err := l.Label(series(1)); !errors.Is(err, calculator.ErrNoValidClose) {
		t.Errorf("expected finder error to propagate, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{Window: -time.Hour}); err == nil {
		t.Error("expected error for negative window")
	}
	if _, err := New(Options{TiePolicy: "coin_flip"}); err == nil {
		t.Error("expected error for unknown tie policy")
	}
	l := mustNew(t, Options{})
	if l.Options().Window != 12*time.Hour || l.Options().TiePolicy != model.TieLongWins {
		t.Errorf("unexpected defaults %+v", l.Options())
	}
}
