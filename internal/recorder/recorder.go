package recorder

import (
	"time"

	"PriceLabeler/internal/labeler"
	"PriceLabeler/internal/model"
)

// RunSnapshot holds everything worth keeping about one pipeline run.
type RunSnapshot struct {
	ID        string
	StartedAt time.Time
	Source    string
	Series    *model.PriceSeries
	Summary   labeler.Summary
	Options   labeler.Options
	Features  []model.Feature
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	Close() error
}
