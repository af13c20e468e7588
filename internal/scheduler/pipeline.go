package scheduler

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"PriceLabeler/internal/chart"
	"PriceLabeler/internal/collector"
	"PriceLabeler/internal/export"
	"PriceLabeler/internal/features"
	"PriceLabeler/internal/labeler"
	"PriceLabeler/internal/model"
	"PriceLabeler/internal/recorder"
	"PriceLabeler/internal/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Pipeline runs load → label → plot → feature search once per call.
// Renderer and Finder are optional; nil skips the step.
type Pipeline struct {
	Collector  *collector.Collector
	Labeler    *labeler.Labeler
	Renderer   chart.Renderer
	Finder     features.Synthesizer
	TopN       int
	LabelsPath string
	Recorder   recorder.Recorder
	Out        io.Writer // feature formulas go here

	mu     sync.Mutex
	logger zerolog.Logger
}

// Result is what a single run produced.
type Result struct {
	ID       string
	Series   *model.PriceSeries
	Summary  labeler.Summary
	Features []model.Feature
}

// NewPipeline wires the mandatory steps; optional ones are set on the returned value.
func NewPipeline(col *collector.Collector, lab *labeler.Labeler) *Pipeline {
	return &Pipeline{
		Collector: col,
		Labeler:   lab,
		TopN:      features.DefaultTopN,
		Recorder:  recorder.NewNoopRecorder(),
		Out:       os.Stdout,
		logger:    log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes every step in order. Any failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := &Result{ID: uuid.NewString()}
	started := time.Now()
	logger := p.logger.With().Str("run", res.ID).Logger()

	series, err := p.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	labeled, sum, err := p.Labeler.Label(series)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	res.Series, res.Summary = labeled, sum

	if p.Renderer != nil {
		if err := p.Renderer.Render(labeled); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
	}

	if p.Finder != nil {
		feats, err := p.Finder.Fit(labeled, labeled.Labels)
		if err != nil {
			return nil, fmt.Errorf("feature search: %w", err)
		}
		res.Features = feats
		if err := report.WriteFormulas(p.Out, feats, p.TopN); err != nil {
			return nil, fmt.Errorf("print features: %w", err)
		}
		logger.Debug().Msg("\n" + report.FormatFeatureTable(feats, p.TopN))
	}

	if p.LabelsPath != "" {
		if err := export.WriteLabels(labeled, p.LabelsPath); err != nil {
			return nil, fmt.Errorf("export labels: %w", err)
		}
		logger.Info().Str("path", p.LabelsPath).Msg("labels exported")
	}

	if err := p.Recorder.RecordRun(&recorder.RunSnapshot{
		ID:        res.ID,
		StartedAt: started,
		Source:    p.Collector.Source.Name(),
		Series:    labeled,
		Summary:   sum,
		Options:   p.Labeler.Options(),
		Features:  res.Features,
	}); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	logger.Info().Dur("took", time.Since(started)).Msg("\n" + report.FormatRunSummary(labeled, sum, p.Labeler.Options()))
	return res, nil
}
