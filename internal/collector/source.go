package collector

import (
	"context"

	"PriceLabeler/internal/model"
)

// Source defines the interface for loading historical bars.
type Source interface {
	Load(ctx context.Context) ([]model.Bar, error)
	Name() string
}
