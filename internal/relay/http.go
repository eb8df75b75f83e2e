package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// maxErrorBody bounds how much of a failed response is read for diagnostics.
const maxErrorBody = 4 << 10

// HTTP talks to the key directory and message store over JSON.
type HTTP struct {
	Base  string
	Token string
	HTTP  *http.Client

	log *zap.Logger
}

// Option configures an HTTP client.
type Option func(*HTTP)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) { h.HTTP = c }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *HTTP) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHTTP returns a client for base authenticating with token. Trailing
// slashes on base are dropped.
func NewHTTP(base, token string, opts ...Option) *HTTP {
	h := &HTTP{Base: strings.TrimRight(base, "/"), Token: token, HTTP: http.DefaultClient, log: zap.NewNop()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// wrapped is the {"message": ..., "data": ...} body of message-store responses.
type wrapped struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// apiError is the error body returned by the server.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// codeNotFound marks a 404 produced by a handler that looked the record up,
// as opposed to a route the server does not know.
const codeNotFound = "NOT_FOUND"

// remoteError is the decoded error of a non-2xx response.
type remoteError struct {
	Code    string
	Message string
}

func (e *remoteError) Error() string { return e.Message }

func (c *HTTP) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Debug("relay request failed", zap.String("op", op), zap.Error(err))
		return &domain.TransportError{
			Op:        op,
			Retryable: !errors.Is(err, context.Canceled),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	c.log.Debug("relay request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		return statusError(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// doWrapped is do for message-store endpoints whose payload sits under "data".
func (c *HTTP) doWrapped(ctx context.Context, op, method, path string, in, out any) error {
	var w wrapped
	if err := c.do(ctx, op, method, path, in, &w); err != nil {
		return err
	}
	if out == nil || len(w.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(w.Data, out); err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	re := &remoteError{Message: resp.Status}
	var ae apiError
	if json.Unmarshal(raw, &ae) == nil {
		re.Code = ae.Error
		switch {
		case ae.Message != "":
			re.Message = ae.Message
		case ae.Error != "":
			re.Message = ae.Error
		}
	}
	return &domain.TransportError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		Err:        re,
	}
}

// isNotFound reports whether err is a 404 for a missing record. A 404
// without the NOT_FOUND code (an unknown route, a wrong base URL) is not.
func isNotFound(err error) bool {
	var re *remoteError
	return statusOf(err) == http.StatusNotFound && errors.As(err, &re) && re.Code == codeNotFound
}

// statusOf returns the HTTP status carried by err, or zero.
func statusOf(err error) int {
	var te *domain.TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
