package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"piglet-bot/internal/models"
)

const openWeatherForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

// forecastResponse mirrors the OpenWeather 5-day/3-hour forecast payload.
type forecastResponse struct {
	List []struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Clouds struct {
			All int `json:"all"`
		} `json:"clouds"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		DateText string `json:"dt_txt"`
	} `json:"list"`
}

// OpenWeather fetches the 3-hour forecast for a fixed location.
type OpenWeather struct {
	apiKey string
	lat    float64
	lon    float64
	lang   string
	loc    *time.Location
	base   string
	client *http.Client
}

// NewOpenWeather creates the forecast adapter. Forecast timestamps are
// interpreted in loc, which should match the bot's schedule time zone.
func NewOpenWeather(apiKey string, lat, lon float64, lang string, loc *time.Location) *OpenWeather {
	return &OpenWeather{
		apiKey: apiKey,
		lat:    lat,
		lon:    lon,
		lang:   lang,
		loc:    loc,
		base:   openWeatherForecastURL,
		client: newHTTPClient(),
	}
}

// FetchForecast returns the forecast buckets for the next days, oldest first.
func (w *OpenWeather) FetchForecast(ctx context.Context) ([]models.ForecastEntry, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%g", w.lat))
	q.Set("lon", fmt.Sprintf("%g", w.lon))
	q.Set("units", "metric")
	q.Set("lang", w.lang)
	q.Set("appid", w.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, unavailable("weather request", err)
	}

	var data forecastResponse
	if err := getJSON(w.client, req, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&data)
	}); err != nil {
		return nil, unavailable("weather fetch", err)
	}

	entries := make([]models.ForecastEntry, 0, len(data.List))
	for _, item := range data.List {
		ts, err := time.ParseInLocation("2006-01-02 15:04:05", item.DateText, w.loc)
		if err != nil {
			continue
		}
		entry := models.ForecastEntry{
			Timestamp:   ts,
			Temperature: item.Main.Temp,
			CloudCover:  item.Clouds.All,
			WindSpeed:   item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			entry.Description = item.Weather[0].Description
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
