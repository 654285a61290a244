// Package postgrest is a small client for PostgREST-style table APIs
// (GET/POST/PATCH/DELETE on /<table> with operator-prefixed filters).
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a single PostgREST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	serviceKey string
	http       *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	ServiceKey string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// New creates a client. The service key, when present, is sent as the bearer token.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		serviceKey: opts.ServiceKey,
		http:       httpClient,
	}
}

// Error is a non-2xx PostgREST reply.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest %d: %s", e.Status, e.Message)
}

// From starts a query against table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, params: url.Values{}}
}

// Ping checks that the endpoint answers with a non-5xx status.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping postgrest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// Query accumulates filters for one request. It is not safe for reuse across goroutines.
type Query struct {
	client *Client
	table  string
	params url.Values
}

// Select restricts returned columns.
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

// Eq adds column=eq.value.
func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

// IsNull adds column=is.null.
func (q *Query) IsNull(column string) *Query {
	q.params.Add(column, "is.null")
	return q
}

// Gte adds column=gte.value.
func (q *Query) Gte(column, value string) *Query {
	q.params.Add(column, "gte."+value)
	return q
}

// Lte adds column=lte.value.
func (q *Query) Lte(column, value string) *Query {
	q.params.Add(column, "lte."+value)
	return q
}

// Order sets the ordering, e.g. Order("id", true) gives order=id.desc.
func (q *Query) Order(column string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.params.Set("order", column+"."+dir)
	return q
}

// Limit caps the number of rows.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Get decodes the matching rows into dest (a pointer to a slice).
func (q *Query) Get(ctx context.Context, dest interface{}) error {
	return q.do(ctx, http.MethodGet, nil, dest)
}

// Insert posts body and decodes the created rows into dest.
func (q *Query) Insert(ctx context.Context, body, dest interface{}) error {
	return q.do(ctx, http.MethodPost, body, dest)
}

// Update patches the filtered rows and decodes the updated rows into dest.
func (q *Query) Update(ctx context.Context, body, dest interface{}) error {
	return q.do(ctx, http.MethodPatch, body, dest)
}

// Delete removes the filtered rows and decodes them into dest.
func (q *Query) Delete(ctx context.Context, dest interface{}) error {
	return q.do(ctx, http.MethodDelete, nil, dest)
}

func (q *Query) do(ctx context.Context, method string, body, dest interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", q.table, err)
		}
		payload = bytes.NewReader(raw)
	}

	endpoint := q.client.baseURL + "/" + q.table
	if encoded := q.params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := q.client.newRequest(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := q.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, q.table, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", q.table, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if dest == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", q.table, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build postgrest request: %w", err)
	}

	apiKey := c.apiKey
	if apiKey == "" {
		apiKey = c.serviceKey
	}
	bearer := c.serviceKey
	if bearer == "" {
		bearer = c.apiKey
	}
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
