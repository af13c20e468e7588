package collector

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PriceLabeler/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooSource loads intraday bars from the Yahoo Finance chart API.
type YahooSource struct {
	BaseURL   string
	Symbol    string
	Interval  string // e.g. "1m"
	Range     string // e.g. "7d"
	SymbolMap map[string]string

	client  *resty.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewYahooSource creates a Yahoo source with optional proxy support.
func NewYahooSource(symbol, interval, rng, proxyURL string) *YahooSource {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err == nil {
			client.SetProxy(proxyURL)
		}
	}
	if interval == "" {
		interval = "1m"
	}
	if rng == "" {
		rng = "7d"
	}
	return &YahooSource{
		BaseURL:  yahooBaseURL,
		Symbol:   symbol,
		Interval: interval,
		Range:    rng,
		SymbolMap: map[string]string{
			"SPX500":  "^GSPC",
			"SPX":     "^GSPC",
			"BTCUSDT": "BTC-USD",
			"ETHUSDT": "ETH-USD",
		},
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:  log.With().Str("component", "yahoo").Logger(),
	}
}

func (s *YahooSource) Name() string { return "yahoo" }

func (s *YahooSource) yahooSymbol() string {
	if mapped, ok := s.SymbolMap[s.Symbol]; ok {
		return mapped
	}
	return s.Symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

func (s *YahooSource) Load(ctx context.Context) ([]model.Bar, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", s.BaseURL, url.PathEscape(s.yahooSymbol()))
	s.logger.Debug().Str("url", endpoint).Str("interval", s.Interval).Str("range", s.Range).Msg("fetching chart")

	var chart yahooChart
	operation := func() error {
		chart = yahooChart{}
		resp, err := s.client.R().
			SetContext(ctx).
			SetHeader("User-Agent", "Mozilla/5.0").
			SetQueryParams(map[string]string{"interval": s.Interval, "range": s.Range}).
			SetResult(&chart).
			ForceContentType("application/json").
			Get(endpoint)
		if err != nil {
			// A 200 that fails to decode will not improve on retry.
			if resp != nil && resp.StatusCode() == http.StatusOK {
				return backoff.Permanent(fmt.Errorf("yahoo decode: %w", err))
			}
			return fmt.Errorf("yahoo fetch: %w", err)
		}
		switch {
		case resp.StatusCode() == http.StatusOK:
			return nil
		case resp.StatusCode() >= 500 || resp.StatusCode() == http.StatusTooManyRequests:
			return fmt.Errorf("yahoo: status %d", resp.StatusCode())
		default:
			return backoff.Permanent(fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String()))
		}
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote data")
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if math.IsNaN(c) {
			continue // skip null bars (halts, gaps)
		}
		bars = append(bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	s.logger.Info().Int("bars", len(bars)).Str("symbol", s.yahooSymbol()).Msg("chart fetched")
	return bars, nil
}
