package mediaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/internal/platform/httpserver"
)

// DefaultBaseURL is the local development endpoint of the media API.
const DefaultBaseURL = "http://localhost:3001/api"

const maxResponseBytes = 4 << 20

// TokenFunc returns the bearer token for one request; empty means none.
type TokenFunc func(ctx context.Context) (string, error)

// StaticToken always returns tok.
func StaticToken(tok string) TokenFunc {
	return func(context.Context) (string, error) { return tok, nil }
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      TokenFunc
	UserAgent  string
	// CB, when set, short-circuits calls after repeated transport failures
	// or 5xx responses.
	CB *gobreaker.CircuitBreaker
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  "media-catalog-ui/1.0",
	}
}

// List fetches one page of media.
func (c *Client) List(ctx context.Context, page, limit int) (*media.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	status, b, err := c.do(ctx, "list", http.MethodGet, "/media?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, &HTTPError{Op: "list", Status: status, Message: errorMessage(b, "error", "message")}
	}
	var out media.Page
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("mediaapi: list: decode error: %w body=%q", err, snippet(b))
	}
	return &out, nil
}

// Create submits a new record.
func (c *Client) Create(ctx context.Context, f media.Fields) (media.Record, error) {
	status, b, err := c.do(ctx, "create", http.MethodPost, "/media", f)
	if err != nil {
		return media.Record{}, err
	}
	if !ok(status) {
		return media.Record{}, rejection("create", status, b, "Failed to create media", "error", "message")
	}
	return decodeRecord("create", b)
}

// Update replaces the editable fields of record id.
func (c *Client) Update(ctx context.Context, id string, f media.Fields) (media.Record, error) {
	status, b, err := c.do(ctx, "update", http.MethodPut, "/media/"+url.PathEscape(id), f)
	if err != nil {
		return media.Record{}, err
	}
	if !ok(status) {
		return media.Record{}, rejection("update", status, b, "Failed to update media", "message", "error")
	}
	return decodeRecord("update", b)
}

// Remove deletes record id.
func (c *Client) Remove(ctx context.Context, id string) error {
	status, b, err := c.do(ctx, "remove", http.MethodDelete, "/media/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		msg := errorMessage(b, "error", "message")
		if msg == "" {
			msg = "Failed to delete media"
		}
		return &HTTPError{Op: "remove", Status: status, Message: msg}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body any) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("mediaapi: %s: encode: %w", op, err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("mediaapi: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if rid := httpserver.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set(httpserver.RequestIDHeader, rid)
	}
	if c.Token != nil {
		tok, err := c.Token(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("mediaapi: %s: token: %w", op, err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	var res response
	if c.CB == nil {
		res, err = c.send(req)
	} else {
		var v any
		v, err = c.CB.Execute(func() (any, error) { return c.send(req) })
		if r, isResp := v.(response); isResp {
			res = r
		}
	}
	var se serverStatus
	if errors.As(err, &se) {
		err = nil
	}
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	return res.status, res.body, nil
}

type response struct {
	status int
	body   []byte
}

// serverStatus marks a 5xx response so the breaker counts it as a failure.
type serverStatus struct{ status int }

func (e serverStatus) Error() string { return fmt.Sprintf("server status %d", e.status) }

func (c *Client) send(req *http.Request) (response, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, err
	}
	out := response{status: resp.StatusCode, body: b}
	if resp.StatusCode >= http.StatusInternalServerError {
		return out, serverStatus{status: resp.StatusCode}
	}
	return out, nil
}

func ok(status int) bool { return status >= 200 && status < 300 }

// rejection maps a failed create/update response to ValidationError when the
// body names a reason and to HTTPError otherwise.
func rejection(op string, status int, b []byte, generic string, keys ...string) error {
	if msg := errorMessage(b, keys...); msg != "" {
		return &ValidationError{Op: op, Status: status, Message: msg}
	}
	return &HTTPError{Op: op, Status: status, Message: generic}
}

// errorMessage looks for the first key holding a string, or an object with a
// string "message", in a JSON error body.
func errorMessage(b []byte, keys ...string) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}
	for _, k := range keys {
		raw, found := body[k]
		if !found {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
			return nested.Message
		}
	}
	return ""
}

func decodeRecord(op string, b []byte) (media.Record, error) {
	var out media.Record
	if err := json.Unmarshal(b, &out); err != nil {
		return media.Record{}, fmt.Errorf("mediaapi: %s: decode error: %w body=%q", op, err, snippet(b))
	}
	return out, nil
}

func snippet(b []byte) string {
	return string(b[:min(len(b), 200)])
}
