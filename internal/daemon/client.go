package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scanwarden/internal/models"
	"scanwarden/pkg/errors"
)

const defaultContext = "Default Context"

// Client is the HTTP implementation of Daemon. It is stateless: every method
// issues one GET against the daemon's base address and decodes the JSON body.
// Transport errors and non-2xx statuses surface uniformly as RemoteError;
// retry policy belongs to callers.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) call(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}

	endpoint := c.baseURL + "/" + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewRemoteError(path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewRemoteError(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewRemoteError(path, fmt.Errorf("unexpected status %s", resp.Status))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewRemoteError(path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// status decodes a polling view: a JSON object mapping sub-job id to a
// completion percentage encoded as a string.
func (c *Client) status(ctx context.Context, path string) (map[string]int, error) {
	var raw map[string]string
	if err := c.call(ctx, path, nil, &raw); err != nil {
		return nil, err
	}

	progress := make(map[string]int, len(raw))
	for id, pct := range raw {
		value, err := strconv.Atoi(strings.TrimSuffix(pct, "%"))
		if err != nil {
			continue
		}
		progress[id] = value
	}
	return progress, nil
}

func (c *Client) Prime(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.NewRemoteError("prime", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewRemoteError("prime", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) StartDiscovery(ctx context.Context, target string) error {
	return c.call(ctx, "JSON/spider/action/scan", url.Values{"url": {target}}, nil)
}

func (c *Client) DiscoveryStatus(ctx context.Context) (map[string]int, error) {
	return c.status(ctx, "JSON/spider/view/status")
}

func (c *Client) StartActiveProbe(ctx context.Context, target string) error {
	return c.call(ctx, "JSON/ascan/action/scan", url.Values{"url": {target}}, nil)
}

func (c *Client) ActiveProbeStatus(ctx context.Context) (map[string]int, error) {
	return c.status(ctx, "JSON/ascan/view/status")
}

func (c *Client) IncludeInScope(ctx context.Context, pattern string) error {
	return c.call(ctx, "JSON/context/action/includeInContext", url.Values{
		"contextName": {defaultContext},
		"regex":       {pattern},
	}, nil)
}

func (c *Client) StartPassive(ctx context.Context) error {
	return c.call(ctx, "JSON/pscan/action/scanAllInScope", nil, nil)
}

func (c *Client) ListAlerts(ctx context.Context, baseURL string, limit int) ([]models.Alert, error) {
	var body struct {
		Alerts []models.Alert `json:"alerts"`
	}
	query := url.Values{
		"baseurl": {baseURL},
		"start":   {"0"},
		"count":   {strconv.Itoa(limit)},
	}
	if err := c.call(ctx, "JSON/core/view/alerts", query, &body); err != nil {
		return nil, err
	}
	if body.Alerts == nil {
		return []models.Alert{}, nil
	}
	return body.Alerts, nil
}

func (c *Client) Version(ctx context.Context) (string, error) {
	var body struct {
		Version string `json:"version"`
	}
	if err := c.call(ctx, "JSON/core/view/version", nil, &body); err != nil {
		return "", err
	}
	return body.Version, nil
}
