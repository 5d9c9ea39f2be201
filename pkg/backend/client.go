package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/arnavshah/orchestrator-api-go/pkg/models"
)

// Client is a thin HTTP facade over the backend data service that stores
// staff, projects, availability and assignments. Calls carry no retry
// policy; a failed call is reported to the caller as-is.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the backend service at baseURL,
// e.g. "http://localhost:5001".
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logger,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("backend: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "url", req.URL.String(), "error", err)
		return fmt.Errorf("backend: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("backend returned error status",
			"url", req.URL.String(), "status", resp.StatusCode)
		return fmt.Errorf("backend: %s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// Staff fetches every staff member.
func (c *Client) Staff(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	if err := c.get(ctx, "/api/staff", nil, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// Projects fetches every project.
func (c *Client) Projects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.get(ctx, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Availability fetches precomputed per-staff availability for one date.
func (c *Client) Availability(ctx context.Context, date string) ([]models.AvailabilityEntry, error) {
	params := url.Values{"date": {date}}
	var entries []models.AvailabilityEntry
	if err := c.get(ctx, "/api/availability", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Assignments fetches every persisted assignment.
func (c *Client) Assignments(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := c.get(ctx, "/api/assignments", nil, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// CreateAssignment persists one staff-project booking.
func (c *Client) CreateAssignment(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	var created models.Assignment
	if err := c.post(ctx, "/api/assignments", a, &created); err != nil {
		return models.Assignment{}, err
	}
	return created, nil
}

// CreateProject creates a new project record with the given name.
func (c *Client) CreateProject(ctx context.Context, name string) (models.Project, error) {
	payload := models.Project{Name: name}
	var created models.Project
	if err := c.post(ctx, "/api/projects", payload, &created); err != nil {
		return models.Project{}, err
	}
	return created, nil
}

// CreateStaff creates a new staff record with the given name. Only used by
// deployments that enable staff auto-creation.
func (c *Client) CreateStaff(ctx context.Context, name string) (models.Staff, error) {
	payload := models.Staff{Name: name}
	var created models.Staff
	if err := c.post(ctx, "/api/staff", payload, &created); err != nil {
		return models.Staff{}, err
	}
	return created, nil
}
