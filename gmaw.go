// Package gmaw provides a Go wrapper for the Meta Graph API covering
// Facebook pages and Instagram business accounts.
//
// It handles the media publication pipeline (fetch, validate, upload, poll,
// commit), authentication helpers, comment moderation, and insights, with
// rate limiting and structured diagnostics built in.
//
// Basic usage:
//
//	client, err := gmaw.NewClient(&gmaw.Config{
//		AccessToken: "your-access-token",
//		BusinessID:  "your-ig-business-id",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Business().CreatePost(ctx, &types.PostRequest{
//		Medias:  []types.MediaItem{{Kind: types.MediaPhoto, Ref: types.MediaURL("https://example.com/a.jpg")}},
//		Caption: "hello",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
package gmaw

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/metapub/go-meta-api-wrapper/internal"
	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/mediaspec"
)

const (
	// DefaultBaseURL is the Graph API host for regular calls.
	DefaultBaseURL = "https://graph.facebook.com/"
	// DefaultVideoBaseURL is the dedicated host for page video uploads.
	DefaultVideoBaseURL = "https://graph-video.facebook.com/"
	// DefaultAPIVersion is the Graph API version requests are pinned to.
	DefaultAPIVersion = "v21.0"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Config holds the configuration for the Graph API client.
//
// AccessToken is the only required field. PageID and BusinessID select the
// accounts the page and business capability clients operate on; each is
// validated when the corresponding capability is first used, so a
// business-only integration never needs a PageID.
type Config struct {
	// AccessToken is the page or user token all requests are made with.
	AccessToken string

	// PageID is the Facebook page the page client publishes to.
	PageID string

	// BusinessID is the Instagram business account the business client
	// publishes to.
	BusinessID string

	// AppID and AppSecret are only needed for the OAuth helpers
	// (ExchangeCode, DebugToken).
	AppID     string
	AppSecret string

	// APIVersion pins the Graph API version. Defaults to DefaultAPIVersion.
	APIVersion string

	// BaseURL overrides the Graph API host. Defaults to DefaultBaseURL.
	// Tests point this at a local server.
	BaseURL string

	// VideoBaseURL overrides the video upload host. Defaults to
	// DefaultVideoBaseURL.
	VideoBaseURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during API calls.
	Logger *slog.Logger

	// PollInterval is the delay between container status checks. Defaults to
	// 10 seconds.
	PollInterval time.Duration

	// PollTimeout bounds how long a publish waits for media processing.
	// Defaults to 10 minutes.
	PollTimeout time.Duration

	// Prober extracts video stream metadata for validation. Leave nil to
	// skip the deep video checks and rely on the platform's own processing;
	// set it to internal ffprobe (gmaw.FFProbe()) or a custom implementation.
	Prober mediaspec.Prober

	// RequestsPerMinute and Burst tune the client-side rate limiter. Zero
	// values use the defaults.
	RequestsPerMinute float64
	Burst             int
}

// Client is the main Graph API client. Capability clients for the different
// API surfaces share its transport and configuration:
//
//	client.Pages()     // Facebook page publishing
//	client.Business()  // Instagram business publishing
//	client.Comments()  // comment moderation
//	client.Insights()  // metrics
type Client struct {
	graph      *internal.Client
	containers *internal.ContainerAPI
	fetcher    *internal.Fetcher
	config     *Config
	logger     *slog.Logger
}

// FFProbe returns a Prober backed by the ffprobe binary. Requires ffprobe in
// $PATH.
func FFProbe() mediaspec.Prober {
	return internal.FFProbe{}
}

// NewClient creates a new Graph API client with the provided configuration.
// It validates the configuration, fills in defaults, and wires the internal
// transport. No network call is made.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.AccessToken == "" {
		return nil, &pkgerrs.ConfigError{Field: "AccessToken", Message: "access token is required"}
	}

	if config.APIVersion == "" {
		config.APIVersion = DefaultAPIVersion
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.VideoBaseURL == "" {
		config.VideoBaseURL = DefaultVideoBaseURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rateCfg := &internal.RateLimitConfig{
		RequestsPerMinute: config.RequestsPerMinute,
		Burst:             config.Burst,
	}

	graph, err := internal.NewClient(
		config.HTTPClient,
		config.AccessToken,
		joinVersion(config.BaseURL, config.APIVersion),
		joinVersion(config.VideoBaseURL, config.APIVersion),
		rateCfg,
		logger,
	)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}

	return &Client{
		graph:      graph,
		containers: internal.NewContainerAPI(graph, config.PollInterval, config.PollTimeout, logger),
		fetcher:    internal.NewFetcher(config.HTTPClient),
		config:     config,
		logger:     logger,
	}, nil
}

func joinVersion(base, version string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + version + "/"
}

// Pages returns the Facebook page capability client.
func (c *Client) Pages() *PageService {
	return &PageService{client: c}
}

// Business returns the Instagram business capability client.
func (c *Client) Business() *BusinessService {
	return &BusinessService{client: c}
}

// Comments returns the comment moderation capability client.
func (c *Client) Comments() *CommentService {
	return &CommentService{client: c}
}

// Insights returns the metrics capability client.
func (c *Client) Insights() *InsightService {
	return &InsightService{client: c}
}

func (c *Client) requirePage() (string, error) {
	if c.config.PageID == "" {
		return "", &pkgerrs.ConfigError{Field: "PageID", Message: "a page id is required for page operations"}
	}
	return c.config.PageID, nil
}

func (c *Client) requireBusiness() (string, error) {
	if c.config.BusinessID == "" {
		return "", &pkgerrs.ConfigError{Field: "BusinessID", Message: "a business account id is required for business operations"}
	}
	return c.config.BusinessID, nil
}
