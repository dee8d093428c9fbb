package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

// Payload is fetched media with its sniffed content type. Ext never comes
// from the reference's filename; only the bytes are trusted.
type Payload struct {
	Bytes []byte
	MIME  string
	Ext   string
}

// Size returns the payload length in bytes.
func (p *Payload) Size() int64 {
	return int64(len(p.Bytes))
}

// Fetcher resolves media references into bytes.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher backed by the given HTTP client. A nil client
// falls back to http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch downloads or reads the referenced media and detects its type from
// the content.
func (f *Fetcher) Fetch(ctx context.Context, ref types.MediaReference) (*Payload, error) {
	var (
		data []byte
		err  error
	)
	switch ref.Source {
	case types.MediaSourceURL:
		data, err = f.fetchURL(ctx, ref.Value)
	case types.MediaSourcePath:
		data, err = os.ReadFile(ref.Value)
		if err != nil {
			err = &pkgerrs.MediaError{Reason: pkgerrs.ReasonUnreachable, Message: fmt.Sprintf("read %s", ref.Value), Err: err}
		}
	default:
		err = &pkgerrs.ValidationError{Field: "source", Message: fmt.Sprintf("unknown media source %q", ref.Source)}
	}
	if err != nil {
		return nil, err
	}

	detected := mimetype.Detect(data)
	ext := strings.TrimPrefix(detected.Extension(), ".")
	if ext == "" {
		return nil, &pkgerrs.MediaError{
			Reason:  pkgerrs.ReasonUndetectableType,
			Message: fmt.Sprintf("could not determine the media type of %s", ref.Value),
		}
	}

	return &Payload{Bytes: data, MIME: detected.String(), Ext: ext}, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "build media download request", Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "download media", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &pkgerrs.MediaError{
			Reason:  pkgerrs.ReasonUnreachable,
			Message: fmt.Sprintf("download of %s failed with status %d", rawURL, resp.StatusCode),
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "read media body", Err: err}
	}
	return data, nil
}
