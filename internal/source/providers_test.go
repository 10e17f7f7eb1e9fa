package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piglet-bot/internal/models"
)

func TestOpenWeatherFetchForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "ru", r.URL.Query().Get("lang"))
		assert.Equal(t, "api-key", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(`{"list":[
			{"dt_txt":"2025-06-15 12:00:00","main":{"temp":21.4},
			 "weather":[{"description":"небольшой дождь"}],
			 "clouds":{"all":75},"wind":{"speed":3.6}},
			{"dt_txt":"2025-06-16 03:00:00","main":{"temp":14.1},
			 "weather":[],"clouds":{"all":20},"wind":{"speed":1.2}},
			{"dt_txt":"garbage","main":{"temp":0},"weather":[],"clouds":{"all":0},"wind":{"speed":0}}
		]}`))
	}))
	defer srv.Close()

	w := NewOpenWeather("api-key", 50.4366, 30.2353, "ru", time.UTC)
	w.base = srv.URL

	entries, err := w.FetchForecast(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2, "unparseable timestamps are dropped")

	assert.Equal(t, models.ForecastEntry{
		Timestamp:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Description: "небольшой дождь",
		Temperature: 21.4,
		CloudCover:  75,
		WindSpeed:   3.6,
	}, entries[0])
	assert.Empty(t, entries[1].Description, "missing weather block leaves description empty")
}

func TestOpenWeatherFetchForecastUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	w := NewOpenWeather("bad", 0, 0, "ru", time.UTC)
	w.base = srv.URL

	_, err := w.FetchForecast(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNBUFetchRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"cc":"USD","rate":41.23},
			{"cc":"EUR","rate":45.67},
			{"cc":"PLN","rate":10.85},
			{"cc":"GBP","rate":52.01}
		]`))
	}))
	defer srv.Close()

	n := NewNBU(srv.URL)
	rates, err := n.FetchRates(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 41.23, rates[models.CurrencyUSD], 1e-9)
	assert.InDelta(t, 45.67, rates[models.CurrencyEUR], 1e-9)
	assert.InDelta(t, 10.85, rates[models.CurrencyPLN], 1e-9)
	assert.Len(t, rates, 4)
}

func TestNBUFetchRatesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	n := NewNBU(srv.URL)
	_, err := n.FetchRates(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchRespectsContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	n := NewNBU(srv.URL)
	_, err := n.FetchRates(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}
