package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"PriceLabeler/internal/labeler"
	"PriceLabeler/internal/model"
)

// FormatRunSummary formats the outcome of a labeling run.
func FormatRunSummary(series *model.PriceSeries, sum labeler.Summary, opts labeler.Options) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("PriceLabeler run | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	if series.Symbol != "" {
		b.WriteString(fmt.Sprintf("Symbol: %s\n", series.Symbol))
	}
	b.WriteString(fmt.Sprintf("Bars: %d", series.Len()))
	if n := series.Len(); n > 0 {
		b.WriteString(fmt.Sprintf(" (%s → %s)",
			series.Bars[0].Time.Format("2006-01-02 15:04"),
			series.Bars[n-1].Time.Format("2006-01-02 15:04")))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Window: %s | tie policy: %s\n", opts.Window, opts.TiePolicy))
	b.WriteString(fmt.Sprintf("Windows labeled: %d\n", sum.Windows))
	b.WriteString(fmt.Sprintf("Long: %d | Short: %d\n", sum.Longs, sum.Shorts))
	if sum.Collisions > 0 {
		b.WriteString(fmt.Sprintf("Collisions (max == min): %d\n", sum.Collisions))
	}
	return b.String()
}

// FormatFeatureTable formats ranked features with their scores.
func FormatFeatureTable(feats []model.Feature, topN int) string {
	var b strings.Builder
	b.WriteString("Top features:\n")
	for _, f := range top(feats, topN) {
		b.WriteString(fmt.Sprintf("  %2d. %-40s %.4f\n", f.Rank, f.Formula, f.Score))
	}
	return b.String()
}

// WriteFormulas prints one formula per line for the first topN features.
func WriteFormulas(w io.Writer, feats []model.Feature, topN int) error {
	for _, f := range top(feats, topN) {
		if _, err := fmt.Fprintln(w, f.Formula); err != nil {
			return err
		}
	}
	return nil
}

func top(feats []model.Feature, n int) []model.Feature {
	if n >= 0 && len(feats) > n {
		return feats[:n]
	}
	return feats
}
