package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	xhttp "RiskRegime/pkg/http"
	"RiskRegime/pkg/logger"
)

var _ domrepo.TimeSeriesSource = (*YahooSource)(nil)

// YahooSource reads daily bars from the Yahoo Finance chart API.
type YahooSource struct {
	client    *xhttp.Client
	baseURL   string
	symbolMap map[string]string
	l         *logger.Logger
}

// NewYahooSource creates a chart API source. baseURL is usually https://query1.finance.yahoo.com.
func NewYahooSource(client *xhttp.Client, baseURL string, l *logger.Logger) *YahooSource {
	return &YahooSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		symbolMap: map[string]string{
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"VIX":    "^VIX",
			"DJI":    "^DJI",
			"SPX500": "^GSPC",
		},
		l: l.Component("yahoo_source"),
	}
}

func (s *YahooSource) Name() string { return "yahoo" }

// chartResponse mirrors /v8/finance/chart. Quote arrays hold null for missing values.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
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

func (s *YahooSource) Fetch(ctx context.Context, symbol, period string, interval domrepo.Interval) ([]models.RawBar, error) {
	start := time.Now()
	ticker := s.ticker(symbol)

	var chart chartResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", s.baseURL, url.PathEscape(ticker)),
		QueryParams: map[string][]string{
			"range":    {period},
			"interval": {string(interval)},
			"events":   {"history"},
		},
	}, &chart)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusUnprocessableEntity) {
			return nil, fmt.Errorf("yahoo %s: %w", ticker, models.ErrNoDataFound)
		}
		s.l.Error("yahoo fetch failed", logger.String("symbol", ticker), logger.Error(err))
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}

	bars, err := chart.bars()
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	s.l.Debug("yahoo fetch ok",
		logger.String("symbol", ticker),
		logger.String("period", period),
		logger.Int("bars", len(bars)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return bars, nil
}

func (s *YahooSource) ticker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if mapped, ok := s.symbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// bars converts the chart payload. Timestamps are shifted by the exchange offset so
// the UTC calendar date equals the exchange trading date.
func (c *chartResponse) bars() ([]models.RawBar, error) {
	if c.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %w", c.Chart.Error.Code, models.ErrNoDataFound)
	}
	if len(c.Chart.Result) == 0 || len(c.Chart.Result[0].Timestamp) == 0 {
		return nil, models.ErrNoDataFound
	}
	res := c.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, models.ErrNoDataFound
	}
	q := res.Indicators.Quote[0]

	at := func(xs []*float64, i int) *float64 {
		if i < len(xs) {
			return xs[i]
		}
		return nil
	}
	out := make([]models.RawBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		out = append(out, models.RawBar{
			Time:   time.Unix(ts+res.Meta.GMTOffset, 0).UTC(),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  at(q.Close, i),
			Volume: at(q.Volume, i),
		})
	}
	return out, nil
}
