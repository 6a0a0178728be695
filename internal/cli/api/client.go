// Package api is the small HTTP client the engagehub commands use to read
// from a running server
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// BaseURL is server.url when set, else built from server.host and server.port
func BaseURL() string {
	if u := strings.TrimRight(viper.GetString("server.url"), "/"); u != "" {
		return u
	}
	return fmt.Sprintf("http://%s:%d", viper.GetString("server.host"), viper.GetInt("server.port"))
}

// Get fetches /api/v1 + path and decodes the envelope data into out
func Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := BaseURL() + "/api/v1" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if token := viper.GetString("user.token"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := viper.GetString("user.id"); id != "" {
		req.Header.Set("X-User-ID", id)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected response (HTTP %d)", resp.StatusCode)
	}
	if !env.Success {
		return fmt.Errorf("%s: %s", env.Code, env.Error)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
