package pricelist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopfront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxFileSize  = 10 << 20
)

// Document is a fetched price list with its body transcoded to UTF-8
type Document struct {
	URL         string
	ContentType string
	Charset     string
	Body        []byte
}

// Fetcher downloads price lists
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Document, error)
}

// HTTPFetcher fetches price lists over HTTP(S)
type HTTPFetcher struct {
	client  *http.Client
	maxSize int64
	logger  *zap.Logger
}

// FetcherOption configures an HTTPFetcher
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// NewHTTPFetcher creates a fetcher using the [import] limits
func NewHTTPFetcher(cfg config.ImportConfig, logger *zap.Logger, opts ...FetcherOption) *HTTPFetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}
	f := &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		maxSize: maxSize,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ Fetcher = (*HTTPFetcher)(nil)

// ValidateURL accepts absolute http and https URLs only
func ValidateURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// Fetch downloads the document and converts it to UTF-8
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("pricelist: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/x-yaml, text/yaml, text/plain, */*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pricelist: GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("pricelist: failed to read response: %w", err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, f.maxSize)
	}

	contentType := resp.Header.Get("Content-Type")
	utf8Body, charset, err := ToUTF8(body, contentType)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Price list fetched",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.String("charset", charset),
		zap.Duration("duration", time.Since(start)),
	)

	return &Document{
		URL:         rawURL,
		ContentType: contentType,
		Charset:     charset,
		Body:        utf8Body,
	}, nil
}
