// Package internal implements the Graph API transport and the media
// publication pipeline shared by the page and business clients.
package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
)

// Client manages communication with the Graph API. Regular calls go to the
// graph host; video multipart uploads go to the dedicated video host.
type Client struct {
	client       *http.Client
	BaseURL      *url.URL
	VideoBaseURL *url.URL
	token        string
	logger       *slog.Logger

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching the
// platform.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 200 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 200
	DefaultRateLimitBurst    = 10
	secondsPerMinute         = 60.0
)

// NewClient returns a new Graph API client. If a nil httpClient is provided,
// http.DefaultClient will be used. A nil logger disables diagnostics.
func NewClient(httpClient *http.Client, token, baseURL, videoBaseURL string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	parsed, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	parsedVideo, err := parseBase(videoBaseURL)
	if err != nil {
		return nil, err
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	return &Client{
		client:       httpClient,
		BaseURL:      parsed,
		VideoBaseURL: parsedVideo,
		token:        token,
		logger:       logger,
		limiter:      buildLimiter(*rateCfg),
	}, nil
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "parse base URL", Err: err}
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// Get performs a GET against the graph host and decodes the JSON response
// into v.
func (c *Client) Get(ctx context.Context, path string, params url.Values, v any) error {
	return c.do(ctx, http.MethodGet, c.BaseURL, path, params, nil, "", v)
}

// PostForm performs a POST with the params URL-encoded in the body.
func (c *Client) PostForm(ctx context.Context, path string, params url.Values, v any) error {
	params = c.withToken(params)
	body := strings.NewReader(params.Encode())
	return c.do(ctx, http.MethodPost, c.BaseURL, path, nil, body, "application/x-www-form-urlencoded", v)
}

// Delete performs a DELETE against the graph host.
func (c *Client) Delete(ctx context.Context, path string, params url.Values, v any) error {
	return c.do(ctx, http.MethodDelete, c.BaseURL, path, params, nil, "", v)
}

// PostMultipart uploads a file with accompanying form fields to the graph
// host.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file []byte, v any) error {
	return c.postMultipart(ctx, c.BaseURL, path, fields, fileField, fileName, file, v)
}

// PostMultipartVideo uploads a file with accompanying form fields to the
// video host.
func (c *Client) PostMultipartVideo(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file []byte, v any) error {
	return c.postMultipart(ctx, c.VideoBaseURL, path, fields, fileField, fileName, file, v)
}

func (c *Client) postMultipart(ctx context.Context, base *url.URL, path string, fields map[string]string, fileField, fileName string, file []byte, v any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, val := range fields {
		if err := w.WriteField(k, val); err != nil {
			return &pkgerrs.ClientError{Operation: "build multipart body", Err: err}
		}
	}
	if err := w.WriteField("access_token", c.token); err != nil {
		return &pkgerrs.ClientError{Operation: "build multipart body", Err: err}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return &pkgerrs.ClientError{Operation: "build multipart body", Err: err}
		}
		if _, err := part.Write(file); err != nil {
			return &pkgerrs.ClientError{Operation: "build multipart body", Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return &pkgerrs.ClientError{Operation: "build multipart body", Err: err}
	}
	return c.do(ctx, http.MethodPost, base, path, nil, &buf, w.FormDataContentType(), v)
}

// Transfer sends raw bytes to an absolute upload URL handed out by a
// resumable session. The token travels in an OAuth authorization header and
// the extra headers carry the offset and total size.
func (c *Client) Transfer(ctx context.Context, rawURL string, headers map[string]string, body io.Reader, size int64, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return &pkgerrs.ClientError{Operation: "build upload request", Err: err}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	if size > 0 {
		req.ContentLength = size
	}
	return c.send(req, v)
}

func (c *Client) do(ctx context.Context, method string, base *url.URL, path string, params url.Values, body io.Reader, contentType string, v any) error {
	u, err := base.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return &pkgerrs.ClientError{Operation: "resolve URL", Err: err}
	}
	if method != http.MethodPost {
		params = c.withToken(params)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &pkgerrs.ClientError{Operation: "build request", Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.send(req, v)
}

func (c *Client) send(req *http.Request, v any) error {
	if err := c.waitForRateLimit(req.Context()); err != nil {
		return &pkgerrs.ClientError{Operation: "rate limit wait", Err: err}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return &pkgerrs.ClientError{Operation: "execute request", Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(req.Context(), "graph request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	c.applyRetryAfter(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return &pkgerrs.ClientError{Operation: "decode response", Err: err}
		}
	}
	return nil
}

// withToken returns a copy of params with the access token appended. A token
// already present in the params wins, so calls like token introspection can
// authorize with an app token instead. The caller's params are never mutated.
func (c *Client) withToken(params url.Values) url.Values {
	out := url.Values{}
	for k, vals := range params {
		out[k] = vals
	}
	if out.Get("access_token") == "" {
		out.Set("access_token", c.token)
	}
	return out
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / secondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

// applyRetryAfter defers subsequent requests when the platform signals
// throttling through a Retry-After header.
func (c *Client) applyRetryAfter(resp *http.Response) {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return
	}
	seconds, err := strconv.ParseFloat(retryAfter, 64)
	if err != nil || seconds <= 0 {
		return
	}

	until := time.Now().Add(time.Duration(seconds * float64(time.Second)))

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}

// errorEnvelope is the JSON shape the Graph API wraps failures in.
type errorEnvelope struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &pkgerrs.APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("request failed with status %s", resp.Status),
			Category:   CategoryUnknown,
		}
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" && envelope.Error.Code == 0 {
		return &pkgerrs.APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Category:   CategoryUnknown,
		}
	}

	apiErr := &pkgerrs.APIError{
		StatusCode: resp.StatusCode,
		Code:       envelope.Error.Code,
		Subcode:    envelope.Error.Subcode,
		Message:    envelope.Error.Message,
		Category:   CategoryUnknown,
		FBTraceID:  envelope.Error.FBTraceID,
	}
	if info, ok := LookupCode(envelope.Error.Code); ok {
		apiErr.Message = info.Message
		apiErr.Category = info.Category
	}
	return apiErr
}
