package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

// pngBytes is a minimal PNG header, enough for content sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.dat")
	if err := os.WriteFile(path, pngBytes, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	payload, err := NewFetcher(nil).Fetch(context.Background(), types.MediaPath(path))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if payload.Ext != "png" {
		t.Errorf("Ext = %q, want png (sniffed, not taken from the filename)", payload.Ext)
	}
	if payload.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", payload.MIME)
	}
	if payload.Size() != int64(len(pngBytes)) {
		t.Errorf("Size = %d, want %d", payload.Size(), len(pngBytes))
	}
}

func TestFetchMissingFile(t *testing.T) {
	_, err := NewFetcher(nil).Fetch(context.Background(), types.MediaPath("/does/not/exist.png"))
	var mediaErr *pkgerrs.MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T: %v", err, err)
	}
	if mediaErr.Reason != pkgerrs.ReasonUnreachable {
		t.Errorf("Reason = %q, want %q", mediaErr.Reason, pkgerrs.ReasonUnreachable)
	}
}

func TestFetchURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer server.Close()

	payload, err := NewFetcher(server.Client()).Fetch(context.Background(), types.MediaURL(server.URL+"/pic"))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if payload.Ext != "png" {
		t.Errorf("Ext = %q, want png", payload.Ext)
	}
}

func TestFetchURLNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewFetcher(server.Client()).Fetch(context.Background(), types.MediaURL(server.URL+"/gone"))
	var mediaErr *pkgerrs.MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T: %v", err, err)
	}
	if mediaErr.Reason != pkgerrs.ReasonUnreachable {
		t.Errorf("Reason = %q, want %q", mediaErr.Reason, pkgerrs.ReasonUnreachable)
	}
}

func TestFetchUndetectableType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mystery")
	if err := os.WriteFile(path, []byte{0x00, 0xba, 0xd1, 0xde, 0xa0}, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := NewFetcher(nil).Fetch(context.Background(), types.MediaPath(path))
	var mediaErr *pkgerrs.MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T: %v", err, err)
	}
	if mediaErr.Reason != pkgerrs.ReasonUndetectableType {
		t.Errorf("Reason = %q, want %q", mediaErr.Reason, pkgerrs.ReasonUndetectableType)
	}
}

func TestFetchUnknownSource(t *testing.T) {
	_, err := NewFetcher(nil).Fetch(context.Background(), types.MediaReference{Source: "carrier-pigeon", Value: "x"})
	var valErr *pkgerrs.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}
