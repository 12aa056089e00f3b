// Package notion provides a client for the Notion database query API.
// Only the read path used by the roadmap is implemented: querying a
// database with a filter and a pagination cursor.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	// APIVersion is sent as the Notion-Version header on every request.
	APIVersion = "2022-06-28"
	// MaxPageSize is the largest page_size the API accepts.
	MaxPageSize = 100
)

// Client is the Notion API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Notion client.
// baseURL is optional; an empty value uses the public API endpoint.
func NewClient(token, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("component", "notion").Logger(),
	}
}

// SetHTTPClient replaces the HTTP client. Retry and transport policy
// belong to whoever supplies it.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// QueryDatabase fetches one page of results from a database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest) (*QueryResponse, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("database id is required")
	}
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}

	var resp QueryResponse
	path := "/databases/" + databaseID + "/query"
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []Page{}
	}
	return &resp, nil
}

// doRequest performs the HTTP request and decodes the JSON response into out.
func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", APIVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("Making Notion request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		var apiErr APIError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("notion API error: status %d, code %s: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("notion API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
