package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"PriceLabeler/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Bars []model.Bar
	Err  error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Load(_ context.Context) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]model.Bar(nil), m.Bars...), nil
}

// GenerateMockBars builds count minute bars oscillating around basePrice.
func GenerateMockBars(start time.Time, basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		// two interleaved cycles so each window has a distinct max and min
		p := basePrice * (1 + 0.01*float64((i*37)%101-50)/50 + 0.002*float64(i%7))
		bars[i] = model.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.001,
			Low:    p * 0.998,
			Close:  p,
			Volume: float64(1000 + (i*13)%500),
		}
	}
	return bars
}

// SourceOptions selects and configures a Source.
type SourceOptions struct {
	Path          string
	Format        string // csv, xlsx or yahoo; inferred from Path when empty
	Sheet         string
	YahooSymbol   string
	YahooInterval string
	YahooRange    string
	Proxy         string
}

// NewSource builds the Source matching opts.
func NewSource(opts SourceOptions) (Source, error) {
	format := strings.ToLower(opts.Format)
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".csv", ".txt":
			format = "csv"
		case ".xlsx", ".xlsm":
			format = "xlsx"
		default:
			return nil, fmt.Errorf("cannot infer data format from %q", opts.Path)
		}
	}
	switch format {
	case "csv":
		return NewCSVSource(opts.Path), nil
	case "xlsx":
		return NewXLSXSource(opts.Path, opts.Sheet), nil
	case "yahoo":
		return NewYahooSource(opts.YahooSymbol, opts.YahooInterval, opts.YahooRange, opts.Proxy), nil
	}
	return nil, fmt.Errorf("unknown data format %q", opts.Format)
}

// Collector loads bars from a Source and wraps them in a PriceSeries.
type Collector struct {
	Source Source
	Symbol string
	logger zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(source Source, symbol string) *Collector {
	return &Collector{
		Source: source,
		Symbol: symbol,
		logger: log.With().Str("component", "collector").Logger(),
	}
}

// Collect loads the bars and orders them chronologically.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, error) {
	bars, err := c.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Source.Name(), err)
	}
	if !sort.SliceIsSorted(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) }) {
		c.logger.Warn().Msg("bars out of order, sorting")
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	}

	series := &model.PriceSeries{Symbol: c.Symbol, Bars: bars}
	ev := c.logger.Info().Str("source", c.Source.Name()).Int("bars", len(bars))
	if len(bars) > 0 {
		ev = ev.Time("from", bars[0].Time).Time("to", bars[len(bars)-1].Time)
	}
	ev.Msg("series loaded")
	return series, nil
}
