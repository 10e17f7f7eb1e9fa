package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"piglet-bot/internal/models"
)

// NBU fetches UAH exchange rates from the National Bank of Ukraine.
type NBU struct {
	url    string
	client *http.Client
}

// NewNBU creates the currency adapter for the given endpoint URL.
func NewNBU(url string) *NBU {
	return &NBU{url: url, client: newHTTPClient()}
}

// FetchRates returns all published rates keyed by currency code.
func (n *NBU) FetchRates(ctx context.Context) (models.Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url, nil)
	if err != nil {
		return nil, unavailable("currency request", err)
	}

	var data []struct {
		Code string  `json:"cc"`
		Rate float64 `json:"rate"`
	}
	if err := getJSON(n.client, req, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&data)
	}); err != nil {
		return nil, unavailable("currency fetch", err)
	}

	rates := make(models.Rates, len(data))
	for _, item := range data {
		rates[models.CurrencyCode(item.Code)] = item.Rate
	}
	return rates, nil
}
