package multipart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petcare-client/internal/ports/media"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type captured struct {
	preset   string
	filename string
	partType string
	content  []byte
}

func newHost(t *testing.T, got *captured, status int, resp map[string]any) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		got.preset = r.FormValue("upload_preset")
		if f, h, err := r.FormFile("file"); err == nil {
			got.filename = h.Filename
			got.partType = h.Header.Get("Content-Type")
			got.content, _ = io.ReadAll(f)
			_ = f.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestUpload_SniffsContentTypeAndReadsURL(t *testing.T) {
	var got captured
	ts := newHost(t, &got, http.StatusOK, map[string]any{
		"secure_url":    "https://res.cloudinary.com/demo/image/upload/v1/abc",
		"resource_type": "image",
	})

	c := NewClient(Config{UploadURL: ts.URL, Fields: map[string]string{"upload_preset": "petcare"}})
	up, err := c.Upload(context.Background(), "/tmp/photos/milo.bin", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if up.URL != "https://res.cloudinary.com/demo/image/upload/v1/abc" {
		t.Fatalf("unexpected url %q", up.URL)
	}
	if up.ContentType != "image/png" || up.Kind != media.KindImage {
		t.Fatalf("unexpected type %q / %q", up.ContentType, up.Kind)
	}
	if got.preset != "petcare" || got.filename != "milo.bin" || got.partType != "image/png" {
		t.Fatalf("unexpected form %+v", got)
	}
	if !bytes.Equal(got.content, pngHeader) {
		t.Fatalf("content mismatch")
	}
}

func TestUpload_CustomURLPathAndFileKind(t *testing.T) {
	var got captured
	ts := newHost(t, &got, http.StatusOK, map[string]any{"data": map[string]any{"url": "https://files.example/doc.txt"}})

	c := NewClient(Config{UploadURL: ts.URL, URLPath: "data.url"})
	up, err := c.Upload(context.Background(), "doc.txt", strings.NewReader("certificado de curso"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.URL != "https://files.example/doc.txt" || up.Kind != media.KindFile {
		t.Fatalf("unexpected upload %+v", up)
	}
	if up.ContentType != "text/plain" {
		t.Fatalf("expected text/plain, got %q", up.ContentType)
	}
}

func TestUpload_Errors(t *testing.T) {
	if _, err := NewClient(Config{}).Upload(context.Background(), "x", strings.NewReader("x")); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	var got captured
	ts := newHost(t, &got, http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "bad preset"}})
	if _, err := NewClient(Config{UploadURL: ts.URL}).Upload(context.Background(), "x", strings.NewReader("x")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	c := NewClient(Config{UploadURL: ts.URL, MaxSize: 4})
	if _, err := c.Upload(context.Background(), "x", strings.NewReader("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
