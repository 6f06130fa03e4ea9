// Package postgrest talks to a PostgREST endpoint such as the Supabase REST
// API (`{project}/rest/v1/{table}`).
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vbonduro/lostfound/internal/collection"
	"github.com/vbonduro/lostfound/internal/domain"
)

// codeNoRows is PostgREST's error code for a single-object request that
// matched zero rows.
const codeNoRows = "PGRST116"

const singleObject = "application/vnd.pgrst.object+json"

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest returned status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest returned status %d: %s", e.Status, e.Message)
}

// Is makes a no-rows response match collection.ErrRowNotFound.
func (e *APIError) Is(target error) bool {
	return target == collection.ErrRowNotFound && e.Code == codeNoRows
}

func (e *APIError) HTTPStatus() int {
	return e.Status
}

type Client struct {
	baseURL string
	table   string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient returns a collection backed by {projectURL}/rest/v1/{table},
// authenticated with the project's API key.
func NewClient(projectURL, apiKey, table string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1",
		table:   table,
		apiKey:  apiKey,
		client:  &http.Client{},
		logger:  logger,
	}
}

func (c *Client) Select(ctx context.Context, q collection.Query) ([]*domain.Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	params := url.Values{"select": {"*"}}
	for _, f := range q.Filters {
		params.Add(f.Column, "eq."+f.Value)
	}
	if q.OrderBy != "" {
		dir := "desc"
		if q.Ascending {
			dir = "asc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}

	items := make([]*domain.Item, 0)
	if err := c.do(ctx, http.MethodGet, params, nil, false, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) SelectOne(ctx context.Context, id string) (*domain.Item, error) {
	params := url.Values{"select": {"*"}, "id": {"eq." + id}}
	var item domain.Item
	if err := c.do(ctx, http.MethodGet, params, nil, true, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Insert(ctx context.Context, in domain.NewItem) (*domain.Item, error) {
	var item domain.Item
	if err := c.do(ctx, http.MethodPost, url.Values{"select": {"*"}}, in, true, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Update(ctx context.Context, id string, u domain.ItemUpdate) (*domain.Item, error) {
	params := url.Values{"select": {"*"}, "id": {"eq." + id}}
	var item domain.Item
	if err := c.do(ctx, http.MethodPatch, params, u, true, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Delete(ctx context.Context, id string) ([]*domain.Item, error) {
	params := url.Values{"select": {"*"}, "id": {"eq." + id}}
	deleted := make([]*domain.Item, 0, 1)
	if err := c.do(ctx, http.MethodDelete, params, nil, false, &deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

// do sends one request to the table endpoint and decodes the JSON response
// into out. single asks PostgREST for exactly one object instead of an array.
func (c *Client) do(ctx context.Context, method string, params url.Values, body any, single bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + "/" + url.PathEscape(c.table) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}
	if single {
		req.Header.Set("Accept", singleObject)
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call postgrest: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close postgrest response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(errBody, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(errBody))
		}
		c.logger.Debug("postgrest request failed", "method", method, "status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
