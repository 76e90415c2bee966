package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dreamware/shareboard/internal/share"
)

// Client talks to a shareboardd instance over HTTP.
type Client struct {
	base       string
	httpClient *http.Client
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("share api: %d %s", e.StatusCode, e.Message)
}

// New creates a client for the service at base, e.g. "http://localhost:8080".
// The HTTP timeout leaves headroom over the server's 20s long-poll bound;
// use the context to cancel earlier.
func New(base string) *Client {
	return &Client{
		base: base,
		httpClient: &http.Client{
			Timeout: share.DefaultWaitTimeout + 10*time.Second,
		},
	}
}

// CreateBoard shares a board and returns its id and tokens.
func (c *Client) CreateBoard(ctx context.Context, board json.RawMessage) (share.CreateResult, error) {
	var out share.CreateResult
	err := c.send(ctx, http.MethodPost, c.base+"/share",
		map[string]json.RawMessage{"board": board}, &out)
	return out, err
}

// GetBoard fetches the current board state with either token.
func (c *Client) GetBoard(ctx context.Context, id, token string) (share.BoardState, error) {
	var out share.BoardState
	err := c.send(ctx, http.MethodGet, c.boardURL(id, "", url.Values{"token": {token}}), nil, &out)
	return out, err
}

// UpdateBoard replaces the board using the edit token.
func (c *Client) UpdateBoard(ctx context.Context, id, token string, board json.RawMessage) (share.UpdateResult, error) {
	var out share.UpdateResult
	err := c.send(ctx, http.MethodPut, c.boardURL(id, "", nil),
		struct {
			Token string          `json:"token"`
			Board json.RawMessage `json:"board"`
		}{Token: token, Board: board}, &out)
	return out, err
}

// WaitForChanges long-polls until the board's revision passes since or the
// server's wait bound elapses.
func (c *Client) WaitForChanges(ctx context.Context, id, token string, since int64) (share.ChangeResult, error) {
	var out share.ChangeResult
	err := c.send(ctx, http.MethodGet, c.boardURL(id, "/changes", url.Values{
		"token": {token},
		"since": {strconv.FormatInt(since, 10)},
	}), nil, &out)
	return out, err
}

func (c *Client) boardURL(id, suffix string, query url.Values) string {
	u := c.base + "/share/" + url.PathEscape(id) + suffix
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// send issues one JSON request and decodes either the payload or the
// service's error body.
func (c *Client) send(ctx context.Context, method, url string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
