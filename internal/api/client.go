package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"writegeist/internal/ingest"
)

// Client talks to a running daemon over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient builds a client for the daemon at baseURL, e.g.
// "http://127.0.0.1:8000".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Echo round-trips text through the daemon.
func (c *Client) Echo(ctx context.Context, text string) (string, error) {
	var resp EchoResponse
	if err := c.postJSON(ctx, "/echo", EchoRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.Echo, nil
}

// IngestChapter submits a chapter for analysis.
func (c *Client) IngestChapter(ctx context.Context, title, text string) (ingest.Result, error) {
	var resp ingest.Result
	err := c.postJSON(ctx, "/ingest_chapter", IngestChapterRequest{Title: title, Text: text}, &resp)
	return resp, err
}

// Section fetches one section's markdown.
func (c *Client) Section(ctx context.Context, name string) (string, error) {
	var resp SectionResponse
	if err := c.getJSON(ctx, "/project/section/"+url.PathEscape(name), &resp); err != nil {
		return "", err
	}
	return resp.Markdown, nil
}

// Sections lists the project's sections.
func (c *Client) Sections(ctx context.Context) ([]SectionSummary, error) {
	var resp SectionsResponse
	if err := c.getJSON(ctx, "/project/sections", &resp); err != nil {
		return nil, err
	}
	return resp.Sections, nil
}

// Propose submits a markdown block for merging into a section.
func (c *Client) Propose(ctx context.Context, section, replace string) (ProposalResponse, error) {
	var resp ProposalResponse
	err := c.postJSON(ctx, "/n8n/proposal", ProposalRequest{Section: section, Replace: replace}, &resp)
	return resp, err
}

// Upload replaces the whole project page.
func (c *Client) Upload(ctx context.Context, markdown string) (UploadResponse, error) {
	var resp UploadResponse
	err := c.postJSON(ctx, "/upload-project", UploadRequest{Markdown: markdown}, &resp)
	return resp, err
}

// DownloadDatabase streams the project database into w.
func (c *Client) DownloadDatabase(ctx context.Context, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download-db", nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download database: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, decodeError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("stream database: %w", err)
	}
	return n, nil
}

// LastUpdated returns the daemon's sync marker as a string; "0" means never
// updated.
func (c *Client) LastUpdated(ctx context.Context) (string, error) {
	var resp LastUpdatedResponse
	if err := c.getJSON(ctx, "/last-updated", &resp); err != nil {
		return "", err
	}
	return resp.LastUpdated, nil
}

// Health reports whether the daemon is reachable and healthy.
func (c *Client) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/api/health", &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("daemon reported unhealthy")
	}
	return nil
}

// Status fetches the daemon's runtime status.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var resp DaemonStatus
	err := c.getJSON(ctx, "/api/status", &resp)
	return resp, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var wire ErrorResponse
	if err := json.Unmarshal(body, &wire); err == nil && strings.TrimSpace(wire.Error) != "" {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, wire.Error)
	}
	return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
