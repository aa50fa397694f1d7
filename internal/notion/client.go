// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion is a minimal client for the Notion blocks API: listing a
// block's children page by page, replacing a block's rich text, and
// walking a page's block tree depth-first.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/notion-math/internal/httputil"
	"github.com/pdiddy/notion-math/pkg/types"
)

// pageSize is the maximum page size accepted by the children endpoint.
const pageSize = 100

// Client talks to the Notion REST API.
type Client struct {
	HTTP       *http.Client
	BaseURL    string
	Token      string
	Version    string
	UserAgent  string
	MaxRetries int
}

// NewClient builds a Client from the HTTP and Notion sections of cfg.
func NewClient(cfg types.Config) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		Token:      cfg.Token,
		Version:    cfg.Version,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// ChildrenPage is one page of the children listing.
type ChildrenPage struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// APIError is a non-2xx response from Notion.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion API returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("notion API returned HTTP %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a credential or sharing failure:
// an invalid token (401) or a page the integration cannot access (403).
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// ListChildren returns one page of the children of blockID. An empty
// cursor requests the first page.
func (c *Client) ListChildren(ctx context.Context, blockID, cursor string) (ChildrenPage, error) {
	params := url.Values{"page_size": {fmt.Sprintf("%d", pageSize)}}
	if cursor != "" {
		params.Set("start_cursor", cursor)
	}
	path := "/blocks/" + url.PathEscape(blockID) + "/children?" + params.Encode()

	var page ChildrenPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return ChildrenPage{}, fmt.Errorf("listing children of %s: %w", blockID, err)
	}
	return page, nil
}

// UpdateRichText replaces the rich_text array of a textual block.
func (c *Client) UpdateRichText(ctx context.Context, blockID string, blockType BlockType, segments []RichText) error {
	if !blockType.IsTextual() {
		return fmt.Errorf("block %s: type %q does not carry rich text", blockID, blockType)
	}
	payload := map[string]any{
		string(blockType): map[string]any{"rich_text": segments},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding update for %s: %w", blockID, err)
	}

	path := "/blocks/" + url.PathEscape(blockID)
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("updating block %s: %w", blockID, err)
	}
	return nil
}

// do sends one request and decodes a JSON response into out when out is
// non-nil. Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", c.Version)
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if len(data) > 0 {
			json.Unmarshal(data, apiErr)
			apiErr.Status = resp.StatusCode
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
