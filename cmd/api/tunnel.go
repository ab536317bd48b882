package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	tunnelAttempts = 10
	tunnelInterval = 3 * time.Second
)

type tunnelList struct {
	Tunnels []struct {
		PublicURL string `json:"public_url"`
		Proto     string `json:"proto"`
	} `json:"tunnels"`
}

// detectTunnelURL asks the local ngrok API for its public URL, preferring
// https. ngrok may still be starting, so the lookup is retried.
func detectTunnelURL(ctx context.Context, apiBase string) (string, error) {
	endpoint := strings.TrimRight(apiBase, "/") + "/api/tunnels"
	client := &http.Client{Timeout: 5 * time.Second}

	var lastErr error
	for attempt := 1; attempt <= tunnelAttempts; attempt++ {
		url, err := fetchTunnelURL(ctx, client, endpoint)
		if err == nil && url != "" {
			return url, nil
		}
		lastErr = err
		if lastErr == nil {
			lastErr = fmt.Errorf("no active tunnels")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(tunnelInterval):
		}
	}
	return "", fmt.Errorf("tunnel lookup failed after %d attempts: %w", tunnelAttempts, lastErr)
}

func fetchTunnelURL(ctx context.Context, client *http.Client, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var list tunnelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("decode tunnels: %w", err)
	}
	for _, t := range list.Tunnels {
		if t.Proto == "https" {
			return t.PublicURL, nil
		}
	}
	if len(list.Tunnels) > 0 {
		return list.Tunnels[0].PublicURL, nil
	}
	return "", nil
}
