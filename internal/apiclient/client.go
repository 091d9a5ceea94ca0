// Package apiclient is the single HTTP client used to reach the upstream
// Malo REST API.  One outgoing-request hook attaches the bearer token of the
// signed-in account; every call is traced, counted and reported in the
// Server-Timing header of the page that triggered it.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/malo-app/malo-web/internal/logger"
)

const instrumentationName = "github.com/malo-app/malo-web/internal/apiclient"

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

// TokenSource yields the bearer token for the account behind ctx.
type TokenSource interface {
	Token(ctx context.Context) string
}

// bearerTransport sets Authorization on every outgoing request whose
// context resolves to a token.  Requests without one go out unauthenticated.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		if tok := t.tokens.Token(req.Context()); tok != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return t.base.RoundTrip(req)
}

// Options configure New.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Tokens    TokenSource
	Transport http.RoundTripper // defaults to http.DefaultTransport
	Cache     *ResponseCache    // optional, used by public lookups
}

// Client talks to the upstream API.  It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *ResponseCache
	tracer  trace.Tracer
	calls   metric.Int64Counter
}

// New builds the client.
func New(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	calls, err := otel.Meter(instrumentationName).Int64Counter("malo.api.calls",
		metric.WithDescription("upstream API calls by method and status"))
	if err != nil {
		logger.Default().WithError(err).Warn("apiclient: counter unavailable")
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: base, tokens: opts.Tokens},
		},
		cache:  opts.Cache,
		tracer: otel.Tracer(instrumentationName),
		calls:  calls,
	}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// call performs one request and returns the raw answer.  Non-2xx answers
// come back as *Error of KindRejected.
func (c *Client) call(ctx context.Context, method, path string, body any) (response, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+routeOf(path), trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.method", method), attribute.String("url.path", path)))
	defer span.End()

	if timing := servertiming.FromContext(ctx); timing != nil {
		m := timing.NewMetric("api").WithDesc(method + " " + routeOf(path)).Start()
		defer m.Stop()
	}

	rlog := logger.FromContext(ctx).WithField("api", method+" "+path)
	start := time.Now()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return response{}, &Error{Kind: KindNetwork, Message: "Could not encode request.", Err: err}
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return response{}, &Error{Kind: KindNetwork, Message: "Could not build request.", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.count(ctx, method, 0)
		rlog.WithError(err).Warn("api call failed")
		msg := "Could not reach the server. Please try again."
		if errors.Is(err, context.Canceled) {
			msg = "Request cancelled."
		}
		return response{}, &Error{Kind: KindNetwork, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.count(ctx, method, resp.StatusCode)
	rlog = rlog.WithField("status", resp.StatusCode).WithField("took", time.Since(start).String())

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		span.SetStatus(codes.Error, resp.Status)
		rlog.Warn("api call rejected")
		return response{}, &Error{Kind: KindRejected, Status: resp.StatusCode, Message: rejectionMessage(resp.StatusCode, b)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, &Error{Kind: KindNetwork, Message: "Could not read the server response.", Err: err}
	}
	rlog.Debug("api call")
	return response{status: resp.StatusCode, header: resp.Header, body: b}, nil
}

func (c *Client) count(ctx context.Context, method string, status int) {
	if c.calls == nil {
		return
	}
	c.calls.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method), attribute.Int("status", status)))
}

// do performs a call and decodes a JSON answer into result (may be nil).
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	resp, err := c.call(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decode(resp.body, result)
}

// doCached is do for GETs of public data shared by every visitor.
func (c *Client) doCached(ctx context.Context, path string, result any) error {
	if c.cache == nil {
		return c.do(ctx, http.MethodGet, path, nil, result)
	}
	key := c.cache.Key(http.MethodGet, c.baseURL+path)
	if body, ok := c.cache.Get(ctx, key); ok {
		if err := decode(body, result); err == nil {
			return nil
		}
	}
	resp, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if resp.status == http.StatusOK {
		c.cache.Put(ctx, key, resp.status, resp.header, resp.body)
	}
	return decode(resp.body, result)
}

func decode(body []byte, result any) error {
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &Error{Kind: KindNetwork, Message: "Unexpected response from the server.", Err: err}
	}
	return nil
}

// rejectionMessage prefers the "message" or "error" member of the body.
func rejectionMessage(status int, body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	switch status {
	case http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case http.StatusForbidden:
		return "You are not allowed to do that."
	case http.StatusNotFound:
		return "Not found."
	case http.StatusConflict:
		return "That record already exists."
	}
	if status >= 500 {
		return "The server had a problem. Please try again later."
	}
	return fmt.Sprintf("Request failed (%d).", status)
}

// routeOf strips the query so spans and timings group by endpoint.
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func withProperty(path string, propertyID string) string {
	if propertyID == "" {
		return path
	}
	return path + "?" + url.Values{"propertyId": {propertyID}}.Encode()
}

func escape(segment string) string { return url.PathEscape(segment) }
