package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads photos from HTTP(S) URLs or the local filesystem.
// Concurrent fetches of the same locator share a single request.
type Fetcher struct {
	client      *http.Client
	scheme      string
	maxBytes    int64
	maxAttempts int
	retryDelay  time.Duration
	group       singleflight.Group
	logger      *slog.Logger
}

var _ ImageSource = (*Fetcher)(nil)

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher) error

// WithHTTPClient replaces the HTTP client. The client's timeout is left as is.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) error {
		if client == nil {
			return errors.New("http client must not be nil")
		}
		f.client = client
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a Fetcher from config.
func NewFetcher(config *Config, opts ...FetcherOption) (*Fetcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	f := &Fetcher{
		client:      &http.Client{Timeout: config.Timeout},
		scheme:      config.Scheme,
		maxBytes:    config.MaxImageBytes,
		maxAttempts: config.MaxAttempts,
		retryDelay:  config.RetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "fetcher")
	return f, nil
}

// Resolve turns a photo locator into an absolute URL or a file path.
// isFile reports which one it is.
func (f *Fetcher) Resolve(locator string) (resolved string, isFile bool, err error) {
	locator = strings.TrimSpace(locator)
	switch {
	case locator == "":
		return "", false, fmt.Errorf("%w: empty photo locator", ErrResourceNotFound)
	case strings.HasPrefix(locator, "//"):
		return f.scheme + locator, false, nil
	case filepath.IsAbs(locator):
		return locator, true, nil
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", false, fmt.Errorf("%w: %q: %w", ErrUnsupportedLocator, locator, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), false, nil
	case "file":
		return u.Path, true, nil
	case "":
		return locator, true, nil
	default:
		return "", false, fmt.Errorf("%w: scheme %q", ErrUnsupportedLocator, u.Scheme)
	}
}

// Fetch loads the photo at locator. Concurrent fetches of the same
// resource share one download; a caller whose ctx ends stops waiting
// without cancelling the download for the others, which stays bounded by
// the client timeout and the retry budget.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (*Image, error) {
	resolved, isFile, err := f.Resolve(locator)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(resolved, func() (any, error) {
		if isFile {
			return f.readFile(resolved)
		}
		return f.download(shared, resolved)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			f.logger.Debug("shared in-flight fetch", "locator", resolved)
		}
		return res.Val.(*Image), nil
	}
}

func (f *Fetcher) readFile(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceNotFound, path, err)
	}
	defer file.Close()

	data, err := f.readLimited(file, path)
	if err != nil {
		return nil, err
	}
	return &Image{Locator: path, ContentType: http.DetectContentType(data), Data: data}, nil
}

func (f *Fetcher) download(ctx context.Context, target string) (*Image, error) {
	var img *Image
	err := RetryWithBackoff(ctx, func() error {
		var err error
		img, err = f.get(ctx, target)
		return err
	}, f.maxAttempts, f.retryDelay)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, ErrResourceNotFound) || errors.Is(err, ErrColorMissing) {
			return nil, err
		}
		// Transient failures that outlived every retry
		return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrResourceNotFound, target, f.maxAttempts, err)
	}
	return img, nil
}

// get performs a single request. Non-retryable failures are wrapped with Permanent.
func (f *Fetcher) get(ctx context.Context, target string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("%w: %s: %w", ErrUnsupportedLocator, target, err))
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	default:
		return nil, Permanent(fmt.Errorf("%w: %s: status %d", ErrResourceNotFound, target, resp.StatusCode))
	}

	data, err := f.readLimited(resp.Body, target)
	if err != nil {
		if errors.Is(err, ErrColorMissing) {
			return nil, Permanent(err)
		}
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &Image{Locator: target, ContentType: contentType, Data: data}, nil
}

func (f *Fetcher) readLimited(r io.Reader, source string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrColorMissing, source, f.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrColorMissing, source)
	}
	return data, nil
}
