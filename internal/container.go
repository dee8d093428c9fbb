package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

const (
	// DefaultPollInterval matches the platform guidance of checking container
	// status no more than once every few seconds.
	DefaultPollInterval = 10 * time.Second
	// DefaultPollTimeout bounds how long a publish waits for processing.
	DefaultPollTimeout = 10 * time.Minute
)

// ContainerAPI drives the media container lifecycle: create, optionally
// upload bytes, wait for processing, commit.
type ContainerAPI struct {
	graph    *Client
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewContainerAPI wires a ContainerAPI over a Graph client. Zero durations
// fall back to the defaults.
func NewContainerAPI(graph *Client, interval, timeout time.Duration, logger *slog.Logger) *ContainerAPI {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ContainerAPI{graph: graph, interval: interval, timeout: timeout, logger: logger}
}

type createResponse struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// Create opens a media container on the account. The params carry the
// media reference (image_url or video_url) and any per-item metadata.
func (a *ContainerAPI) Create(ctx context.Context, accountID string, params url.Values) (string, error) {
	var resp createResponse
	if err := a.graph.PostForm(ctx, accountID+"/media", params, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &pkgerrs.PublishError{Reason: pkgerrs.ReasonContainerFailed, Message: "container creation returned no id"}
	}
	a.logger.DebugContext(ctx, "container created", "account", accountID, "container", resp.ID)
	return resp.ID, nil
}

// CreateResumable opens a resumable upload session and returns the container
// id together with the absolute upload URI for the byte transfer.
func (a *ContainerAPI) CreateResumable(ctx context.Context, accountID string, params url.Values) (id, uploadURI string, err error) {
	out := url.Values{}
	for k, v := range params {
		out[k] = v
	}
	out.Set("upload_type", "resumable")

	var resp createResponse
	if err := a.graph.PostForm(ctx, accountID+"/media", out, &resp); err != nil {
		return "", "", &pkgerrs.UploadError{Message: "open resumable session", Err: err}
	}
	if resp.ID == "" || resp.URI == "" {
		return "", "", &pkgerrs.UploadError{Message: "resumable session response missing id or uri"}
	}
	return resp.ID, resp.URI, nil
}

// Upload transfers local media bytes to a resumable session.
func (a *ContainerAPI) Upload(ctx context.Context, uploadURI string, data []byte) error {
	headers := map[string]string{
		"offset":    "0",
		"file_size": strconv.Itoa(len(data)),
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := a.graph.Transfer(ctx, uploadURI, headers, bytes.NewReader(data), int64(len(data)), &resp); err != nil {
		var apiErr *pkgerrs.APIError
		if errors.As(err, &apiErr) {
			return &pkgerrs.UploadError{StatusCode: apiErr.StatusCode, Message: "byte transfer rejected", Err: apiErr}
		}
		return &pkgerrs.UploadError{Message: "byte transfer failed", Err: err}
	}
	return nil
}

// UploadFromURL asks the platform to pull the media from a public URL into a
// resumable session.
func (a *ContainerAPI) UploadFromURL(ctx context.Context, uploadURI, fileURL string) error {
	headers := map[string]string{"file_url": fileURL}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := a.graph.Transfer(ctx, uploadURI, headers, nil, 0, &resp); err != nil {
		return &pkgerrs.UploadError{Message: "server-side fetch failed", Err: err}
	}
	return nil
}

type statusResponse struct {
	ID         string                `json:"id"`
	StatusCode types.ContainerStatus `json:"status_code"`
	Status     string                `json:"status"`
}

// Status reads the container's current processing state.
func (a *ContainerAPI) Status(ctx context.Context, containerID string) (types.ContainerStatus, error) {
	params := url.Values{"fields": {"status_code,status"}}
	var resp statusResponse
	if err := a.graph.Get(ctx, containerID, params, &resp); err != nil {
		return "", err
	}
	return resp.StatusCode, nil
}

// AwaitReady polls the container until it reaches a terminal state. It
// returns nil for FINISHED (and for PUBLISHED, which means someone already
// committed it), a MediaError for ERROR and EXPIRED, and a PublishError with
// the timeout reason when the deadline passes first. Context cancellation is
// passed through.
func (a *ContainerAPI) AwaitReady(ctx context.Context, containerID string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	polls := 0
	for {
		status, err := a.Status(ctx, containerID)
		if err != nil {
			// The deadline or a cancellation may land mid-request; report
			// those the same way as when they land between polls.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return a.pollAborted(ctxErr, containerID, polls)
			}
			return err
		}
		polls++

		switch status {
		case types.ContainerFinished, types.ContainerPublished:
			a.logger.DebugContext(ctx, "container ready", "container", containerID, "polls", polls)
			return nil
		case types.ContainerError:
			return &pkgerrs.MediaError{
				Reason:  pkgerrs.ReasonContainerFailed,
				Message: fmt.Sprintf("container %s failed processing", containerID),
			}
		case types.ContainerExpired:
			return &pkgerrs.MediaError{
				Reason:  pkgerrs.ReasonContainerExpired,
				Message: fmt.Sprintf("container %s expired before publishing", containerID),
			}
		}

		select {
		case <-ctx.Done():
			return a.pollAborted(ctx.Err(), containerID, polls)
		case <-ticker.C:
		}
	}
}

func (a *ContainerAPI) pollAborted(ctxErr error, containerID string, polls int) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return &pkgerrs.PublishError{
			Reason:  pkgerrs.ReasonTimeout,
			Message: fmt.Sprintf("container %s not ready after %s (%d polls)", containerID, a.timeout, polls),
		}
	}
	return ctxErr
}

// Publish commits a finished container to the account's feed and returns the
// published media id.
func (a *ContainerAPI) Publish(ctx context.Context, accountID, creationID string) (string, error) {
	params := url.Values{"creation_id": {creationID}}
	var resp createResponse
	if err := a.graph.PostForm(ctx, accountID+"/media_publish", params, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &pkgerrs.PublishError{Reason: pkgerrs.ReasonContainerFailed, Message: "publish returned no media id"}
	}
	return resp.ID, nil
}
