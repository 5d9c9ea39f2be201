// Package reports defines the reporting collaborator contract. Rendering
// itself lives in an external service; this package only delegates.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Generator produces a report for a date range in the requested format.
type Generator interface {
	Generate(ctx context.Context, start, end, format string) (map[string]any, error)
}

// HTTPGenerator delegates report generation to the external report service.
type HTTPGenerator struct {
	baseURL string
	http    *http.Client
}

func NewHTTP(baseURL string) *HTTPGenerator {
	return &HTTPGenerator{baseURL: baseURL, http: &http.Client{}}
}

func (g *HTTPGenerator) Generate(ctx context.Context, start, end, format string) (map[string]any, error) {
	if format == "" {
		format = "pdf"
	}
	payload, err := json.Marshal(map[string]string{"start": start, "end": end, "fmt": format})
	if err != nil {
		return nil, fmt.Errorf("reports: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/generate_report", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("reports: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("reports: status %d: %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("reports: decode response: %w", err)
	}
	return result, nil
}
