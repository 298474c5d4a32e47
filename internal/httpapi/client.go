package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/termchess/pkg/chessdto"
)

// Client talks to a Server.
type Client struct {
	baseURL        string
	http           *fasthttp.Client
	defaultTimeout time.Duration
	retryMax       int
}

type ClientOption func(*Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.defaultTimeout = d }
}

// WithDial replaces the transport dialer, for example with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) ClientOption {
	return func(c *Client) { c.http.Dial = dial }
}

// WithRetry sets the attempts made for idempotent reads.
func WithRetry(n int) ClientOption {
	return func(c *Client) { c.retryMax = n }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Start(ctx context.Context, req chessdto.StartGameRequest) (*chessdto.Snapshot, error) {
	var snap chessdto.Snapshot
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games", req, &snap, false); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) Get(ctx context.Context, id string) (*chessdto.Snapshot, error) {
	var snap chessdto.Snapshot
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/games/"+id, nil, &snap, true); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Play submits one line of move text.
func (c *Client) Play(ctx context.Context, id, input string) (*chessdto.MoveResult, error) {
	var res chessdto.MoveResult
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games/"+id+"/moves", chessdto.PlayRequest{Input: input}, &res, false); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) PGN(ctx context.Context, id string) (string, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, "/games/"+id+"/pgn", nil, true)
	return string(body), err
}

func (c *Client) BoardPNG(ctx context.Context, id string, flip bool) ([]byte, error) {
	path := "/games/" + id + "/board.png"
	if flip {
		path += "?flip=1"
	}
	return c.do(ctx, fasthttp.MethodGet, path, nil, true)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, retry bool) error {
	var payload []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = raw
	}
	body, err := c.do(ctx, method, path, payload, retry)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// do returns the response body. Non-2xx responses become a DomainError.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, retry bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			lastErr = decodeError(status, resp.Body())
			if !shouldRetryStatus(status) {
				return nil, lastErr
			}
		} else {
			return append([]byte(nil), resp.Body()...), nil
		}
		if attempt < attempts {
			if err := sleepContext(ctx, backoff(attempt)); err != nil {
				return nil, lastErr
			}
		}
	}
	return nil, lastErr
}

func decodeError(status int, body []byte) error {
	var er chessdto.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Code != "" {
		return er.Error
	}
	msg := string(body)
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return chessdto.DomainError{Code: chessdto.CodeInternal, Message: fmt.Sprintf("status=%d body=%s", status, msg)}
}

func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(d) {
		return dl
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoff doubles from 100ms, capped at 3.2s.
func backoff(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return true
	}
	return false
}
