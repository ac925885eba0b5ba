// Package net provides the HTTP client used to pull remote feedback feeds.
package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"
)

const (
	maxIdleConns     = 10
	timeoutInSeconds = 60
	clientAgent      = "raidtrust"
)

var client = &http.Client{
	Timeout: timeoutInSeconds * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       timeoutInSeconds * time.Second,
		ResponseHeaderTimeout: timeoutInSeconds * time.Second,
	},
}

// GetJSON retrieves the URL and decodes the JSON response into target.
// When token is non-empty it is sent as a bearer credential.
func GetJSON[T any](ctx context.Context, url, token string, target *T) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", clientAgent)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error getting %s: %w", url, err)
	}
	defer resp.Body.Close()

	slog.Debug("feed response", "url", url, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status from %s: %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", url, err)
	}

	return nil
}
