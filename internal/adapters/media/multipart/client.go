package multipart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"

	"petcare-client/internal/ports/media"
)

var (
	ErrNotConfigured = errors.New("media upload not configured")
	ErrUnauthorized  = errors.New("media host unauthorized")
	ErrUpstream      = errors.New("media host upstream error")
	ErrTooLarge      = errors.New("file too large")
)

const DefaultMaxSize = 20 << 20 // 20MB

type Config struct {
	// UploadURL recibe el POST multipart (p.ej. https://api.cloudinary.com/v1_1/<cloud>/auto/upload).
	UploadURL string
	FileField string
	// Fields extra del form (upload_preset, folder...).
	Fields map[string]string
	// URLPath es el path gjson de la URL en la respuesta.
	URLPath string

	MaxSize int64
	Timeout time.Duration
}

// Client sube archivos a un host de media por multipart (estilo Cloudinary
// unsigned preset).
type Client struct {
	uploadURL  string
	fileField  string
	fields     map[string]string
	urlPath    string
	maxSize    int64
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	field := strings.TrimSpace(cfg.FileField)
	if field == "" {
		field = "file"
	}
	path := strings.TrimSpace(cfg.URLPath)
	if path == "" {
		path = "secure_url"
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		uploadURL:  strings.TrimSpace(cfg.UploadURL),
		fileField:  field,
		fields:     cfg.Fields,
		urlPath:    path,
		maxSize:    maxSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.uploadURL != ""
}

var _ media.Uploader = (*Client)(nil)

// Upload lee el archivo, detecta el content type por contenido y lo manda
// con el form. El content type viaja con el resultado.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (media.Upload, error) {
	if !c.IsConfigured() {
		return media.Upload{}, ErrNotConfigured
	}

	data, err := io.ReadAll(io.LimitReader(r, c.maxSize+1))
	if err != nil {
		return media.Upload{}, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > c.maxSize {
		return media.Upload{}, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	ct := mt.String()
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}

	body, formType, err := c.form(name, ct, data)
	if err != nil {
		return media.Upload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		return media.Upload{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", formType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return media.Upload{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// ok
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return media.Upload{}, ErrUnauthorized
	default:
		msg := gjson.GetBytes(raw, "error.message").String()
		return media.Upload{}, fmt.Errorf("%w: status=%d %s", ErrUpstream, resp.StatusCode, msg)
	}

	url := strings.TrimSpace(gjson.GetBytes(raw, c.urlPath).String())
	if url == "" {
		return media.Upload{}, fmt.Errorf("%w: response has no %q", ErrUpstream, c.urlPath)
	}

	// Si el host informa el tipo (resource_type de Cloudinary) manda el host.
	kind := media.KindFromContentType(ct)
	if rt := gjson.GetBytes(raw, "resource_type").String(); rt == "image" {
		kind = media.KindImage
	} else if rt == "raw" {
		kind = media.KindFile
	}

	return media.Upload{
		URL:         url,
		ContentType: ct,
		Kind:        kind,
		Size:        int64(len(data)),
	}, nil
}

func (c *Client) form(name, contentType string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range c.fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	filename := filepath.Base(strings.TrimSpace(name))
	if filename == "." || filename == "/" || filename == "" {
		filename = "upload"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, c.fileField, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
