package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	xhttp "RiskRegime/pkg/http"
	"RiskRegime/pkg/logger"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","gmtoffset":-14400},
  "timestamp":[1704724200,1704810600],
  "indicators":{"quote":[{
    "open":[181.9,null],"high":[185.6,185.1],"low":[181.5,182.7],
    "close":[185.5,184.9],"volume":[59144500,42841800]
  }]}}],"error":null}}`

func TestYahooSourceFetch(t *testing.T) {
	var gotPath, gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	src := NewYahooSource(xhttp.NewClient(), srv.URL, logger.Nop())
	bars, err := src.Fetch(context.Background(), "aapl", "1y", domrepo.Interval1d)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "1y", gotRange)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), bars[0].Time.Truncate(24*time.Hour))
	assert.Nil(t, bars[1].Open)
	require.NotNil(t, bars[1].Close)
	assert.Equal(t, 184.9, *bars[1].Close)
}

func TestYahooSourceMapsIndexSymbols(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	src := NewYahooSource(xhttp.NewClient(), srv.URL, logger.Nop())
	_, err := src.Fetch(context.Background(), "SPX", "1y", domrepo.Interval1d)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
}

func TestYahooSourceNoData(t *testing.T) {
	cases := map[string]func(w http.ResponseWriter){
		"404": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		},
		"api error": func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`))
		},
		"empty": func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
		},
	}
	for name, respond := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { respond(w) }))
			defer srv.Close()

			src := NewYahooSource(xhttp.NewClient(), srv.URL, logger.Nop())
			_, err := src.Fetch(context.Background(), "ZZZZ", "1y", domrepo.Interval1d)
			assert.ErrorIs(t, err, models.ErrNoDataFound)
		})
	}
}

func TestYahooSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewYahooSource(xhttp.NewClient(), srv.URL, logger.Nop())
	_, err := src.Fetch(context.Background(), "AAPL", "1y", domrepo.Interval1d)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNoDataFound)
}
