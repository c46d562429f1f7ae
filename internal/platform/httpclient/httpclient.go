package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"petcare-client/internal/platform/logger"
	"petcare-client/internal/platform/metrics"
)

const (
	DefaultTimeout = 15 * time.Second

	maxBody = 1 << 20 // 1MB
)

// TokenSource entrega el access token vigente. Se consulta en cada request,
// nunca se cachea en el cliente.
type TokenSource interface {
	AccessToken() string
}

// TokenFunc adapta una función a TokenSource.
type TokenFunc func() string

func (f TokenFunc) AccessToken() string { return f() }

// Client envuelve *http.Client con los helpers del gateway de la API.
type Client struct {
	HTTP    *http.Client
	BaseURL string

	tokens  TokenSource
	log     logger.Logger
	metrics *metrics.Metrics
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper // opcional (tests)
	Tokens    TokenSource
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

// New crea un Client. BaseURL es obligatorio y debe ser absoluto.
func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, errors.New("httpclient: base url required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	tr := opts.Transport
	if tr == nil {
		tr = http.DefaultTransport
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		BaseURL: strings.TrimRight(base, "/"),
		tokens:  opts.Tokens,
		log:     log,
		metrics: opts.Metrics,
	}, nil
}

// SetTokenSource permite enchufar la sesión después de construir el cliente
// (la sesión a su vez necesita el cliente para el login).
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Request describe una llamada. Anonymous=true no adjunta bearer (login, registro, refresh).
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Anonymous bool
	Headers   map[string]string
}

// Do ejecuta el request y decodifica el JSON de respuesta en out (opcional).
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	raw, err := c.DoRaw(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return nil
}

// DoRaw ejecuta el request y devuelve el body crudo de una respuesta 2xx.
func (c *Client) DoRaw(ctx context.Context, r Request) ([]byte, error) {
	if c == nil || c.HTTP == nil {
		return nil, errors.New("httpclient: nil client")
	}

	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		method = http.MethodGet
	}

	path := NormalizePath(r.Path)
	route := routeOf(path)
	fullURL, err := c.resolveURL(path, r.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: marshal json: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// El token se lee acá, en el dispatch, y no al construir el cliente.
	if !r.Anonymous && c.tokens != nil {
		if tok := strings.TrimSpace(c.tokens.AccessToken()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	for k, v := range r.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, route, 0, time.Since(start))
		c.log.Debug("api request failed", map[string]any{"method": method, "path": route, "err": err})
		return nil, &NetworkError{Method: method, Path: route, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.metrics.ObserveRequest(method, route, resp.StatusCode, time.Since(start))
	c.log.Debug("api request", map[string]any{
		"method": method,
		"path":   route,
		"status": resp.StatusCode,
		"took":   time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			Method:     method,
			Path:       route,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	return raw, nil
}

func (c *Client) Get(ctx context.Context, path string, q url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: q}, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: in}, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: in}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// GetList hace GET y decodifica una lista con DecodeList.
func GetList[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	raw, err := c.DoRaw(ctx, Request{Method: http.MethodGet, Path: path, Query: q})
	if err != nil {
		return nil, err
	}
	return DecodeList[T](raw)
}

// NormalizePath asegura "/" inicial y final en el path del recurso; el query
// string, si viene, se conserva después de la barra.
// La API rechaza (o redirige) paths sin barra final.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	query := ""
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		if p[i] == '?' {
			query = p[i:]
			if j := strings.IndexByte(query, '#'); j >= 0 {
				query = query[:j]
			}
		}
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p + query
}

// routeOf es el path sin query y con los ids numéricos colapsados, usado como
// label de métricas y logs.
func routeOf(normalized string) string {
	if i := strings.IndexByte(normalized, '?'); i >= 0 {
		normalized = normalized[:i]
	}
	parts := strings.Split(normalized, "/")
	for i, seg := range parts {
		if seg != "" && strings.Trim(seg, "0123456789") == "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func (c *Client) resolveURL(path string, q url.Values) (string, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", errors.New("httpclient: relative path requires BaseURL")
	}
	u := c.BaseURL + path
	if len(q) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + q.Encode()
	}
	return u, nil
}
