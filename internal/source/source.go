// Package source contains the adapters for the four external data providers
// the digest is built from. Every adapter makes a single attempt per call and
// wraps any network, auth, or decode failure with ErrUnavailable so the
// caller can degrade that section instead of aborting the whole digest.
package source

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable marks a source that could not be fetched or parsed.
var ErrUnavailable = errors.New("source unavailable")

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// getJSON performs a GET request and hands the body to decode. Non-2xx
// responses count as failures.
func getJSON(client *http.Client, req *http.Request, decode func(io.Reader) error) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return decode(resp.Body)
}
