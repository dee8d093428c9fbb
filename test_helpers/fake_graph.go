// Package test_helpers provides a configurable fake Graph API server for
// tests. It records every request and serves scripted responses, including
// per-path response sequences for exercising the container polling loop.
package test_helpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// FakeGraph is an httptest-backed Graph API double. Responses are stubbed
// per path; a path stubbed with several responses serves them in order and
// repeats the last one.
type FakeGraph struct {
	server *httptest.Server

	mu         sync.Mutex
	responses  map[string][]*MockResponse
	served     map[string]int
	requestLog []RequestEntry
}

// RequestEntry records one request the fake served.
type RequestEntry struct {
	Method    string
	Path      string
	Query     url.Values
	Form      url.Values
	Header    http.Header
	Timestamp time.Time
}

// MockResponse defines one scripted response.
type MockResponse struct {
	Status int
	Body   string
}

// JSON builds a 200 response with the given body.
func JSON(body string) *MockResponse {
	return &MockResponse{Status: http.StatusOK, Body: body}
}

// GraphError builds a platform error response in the Graph envelope.
func GraphError(status, code int, message string) *MockResponse {
	return &MockResponse{
		Status: status,
		Body:   fmt.Sprintf(`{"error":{"message":%q,"type":"OAuthException","code":%d,"fbtrace_id":"trace-1"}}`, message, code),
	}
}

// NewFakeGraph starts the fake server.
func NewFakeGraph() *FakeGraph {
	fg := &FakeGraph{
		responses: make(map[string][]*MockResponse),
		served:    make(map[string]int),
	}
	fg.server = httptest.NewServer(fg)
	return fg
}

// URL returns the base URL of the fake server, usable as both Config.BaseURL
// and Config.VideoBaseURL.
func (fg *FakeGraph) URL() string {
	return fg.server.URL
}

// Client returns an HTTP client wired to the fake server.
func (fg *FakeGraph) Client() *http.Client {
	return fg.server.Client()
}

// Close shuts the fake server down.
func (fg *FakeGraph) Close() {
	fg.server.Close()
}

// Stub scripts the responses for a path. The path is version-agnostic:
// "/ig1/media" matches a request to "/v21.0/ig1/media".
func (fg *FakeGraph) Stub(path string, responses ...*MockResponse) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	fg.responses[path] = responses
	fg.served[path] = 0
}

// CallCount returns how many requests hit a path.
func (fg *FakeGraph) CallCount(path string) int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	n := 0
	for _, e := range fg.requestLog {
		if e.Path == path {
			n++
		}
	}
	return n
}

// Requests returns every logged request, in order.
func (fg *FakeGraph) Requests() []RequestEntry {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return append([]RequestEntry{}, fg.requestLog...)
}

// LastRequest returns the most recent request to a path.
func (fg *FakeGraph) LastRequest(path string) (*RequestEntry, bool) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	for i := len(fg.requestLog) - 1; i >= 0; i-- {
		if fg.requestLog[i].Path == path {
			entry := fg.requestLog[i]
			return &entry, true
		}
	}
	return nil, false
}

// SetupContainerFlow scripts the whole single-container pipeline: container
// creation, the given status sequence, and the publish commit.
func (fg *FakeGraph) SetupContainerFlow(accountID, containerID, mediaID string, statuses ...string) {
	fg.Stub("/"+accountID+"/media", JSON(fmt.Sprintf(`{"id":%q}`, containerID)))

	polls := make([]*MockResponse, 0, len(statuses))
	for _, status := range statuses {
		polls = append(polls, JSON(fmt.Sprintf(`{"id":%q,"status_code":%q}`, containerID, status)))
	}
	fg.Stub("/"+containerID, polls...)

	fg.Stub("/"+accountID+"/media_publish", JSON(fmt.Sprintf(`{"id":%q}`, mediaID)))
}

// ServeHTTP implements http.Handler.
func (fg *FakeGraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := stripVersion(r.URL.Path)

	entry := RequestEntry{
		Method:    r.Method,
		Path:      path,
		Query:     r.URL.Query(),
		Header:    r.Header.Clone(),
		Timestamp: time.Now(),
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		r.ParseForm()
	}
	entry.Form = r.PostForm

	fg.mu.Lock()
	fg.requestLog = append(fg.requestLog, entry)
	queue := fg.responses[path]
	idx := fg.served[path]
	if len(queue) > 0 {
		if idx >= len(queue) {
			idx = len(queue) - 1
		}
		fg.served[path]++
	}
	fg.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if len(queue) == 0 {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":{"message":"unstubbed path %s","code":803}}`, path)
		return
	}

	resp := queue[idx]
	w.WriteHeader(resp.Status)
	w.Write([]byte(resp.Body))
}

// stripVersion removes a leading /vNN.N segment so stubs don't need to care
// about the pinned API version.
func stripVersion(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	seg, rest, found := strings.Cut(trimmed, "/")
	if !found {
		return path
	}
	if len(seg) > 1 && seg[0] == 'v' && seg[1] >= '0' && seg[1] <= '9' {
		return "/" + rest
	}
	return path
}
