package tumbler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a single HTTP fetch.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher returns the raw content of a source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, source string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, source string) ([]byte, error) {
	return f(ctx, source)
}

// HTTPFetcher fetches http and https sources. Concurrent fetches of the
// same URL share one request.
type HTTPFetcher struct {
	Client  *http.Client
	Timeout time.Duration

	group singleflight.Group
}

// NewHTTPFetcher creates an HTTPFetcher with the given per-fetch timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient, Timeout: timeout}
}

// Fetch returns the response body, or a NetworkError for transport failures
// and non-2xx statuses. A caller whose ctx ends stops waiting without
// cancelling the request for the others.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	ch := f.group.DoChan(source, func() (interface{}, error) {
		// Shared by every caller waiting on source; only the fetcher's own
		// timeout ends it.
		return f.fetch(context.WithoutCancel(ctx), source)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, &NetworkError{Source: source, Err: ctx.Err()}
	}
}

func (f *HTTPFetcher) fetch(ctx context.Context, source string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &NetworkError{Source: source, Err: err}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Source: source, Err: err}
	}
	return body, nil
}

// FileFetcher reads local files. A "file://" prefix is accepted.
type FileFetcher struct{}

// Fetch reads the file named by source.
func (FileFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	path := strings.TrimPrefix(source, "file://")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &NetworkError{Source: source, Err: err}
	}
	return b, nil
}

// SourceFetcher routes http(s) sources to HTTP and everything else to File.
// With a nil File, non-remote sources fail with ErrLocalSource.
type SourceFetcher struct {
	HTTP Fetcher
	File Fetcher
}

// NewFetcher creates a SourceFetcher with an HTTPFetcher using timeout.
func NewFetcher(timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{
		HTTP: NewHTTPFetcher(timeout),
		File: FileFetcher{},
	}
}

// NewRemoteFetcher creates a SourceFetcher that only fetches http and https
// sources. Hosts that take sources from untrusted input use it.
func NewRemoteFetcher(timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{HTTP: NewHTTPFetcher(timeout)}
}

// Fetch dispatches on the source scheme.
func (f *SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		return f.HTTP.Fetch(ctx, source)
	}
	if f.File == nil {
		return nil, &NetworkError{Source: source, Err: ErrLocalSource}
	}
	return f.File.Fetch(ctx, source)
}

// IsRemote reports whether source is an http or https URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
