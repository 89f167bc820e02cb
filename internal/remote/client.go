// Package remote fetches addon payloads and staleness markers over HTTP and resolves
// GitHub "latest release" URLs into downloadable assets.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/conn-castle/yaam/internal/messages"
)

// DefaultGitHubAPIBase is the GitHub REST API root.
const DefaultGitHubAPIBase = "https://api.github.com"

const (
	defaultTimeout          = 10 * time.Second
	defaultDownloadTimeout  = 5 * time.Minute
	defaultMaxDownloadBytes = int64(512 * 1024 * 1024) // 512 MiB
	defaultUserAgent        = "yaam"
	retryCount              = 1
)

var retryDelay = 250 * time.Millisecond

// Gateway is the network surface the update engine depends on.
type Gateway interface {
	// Head returns the staleness marker advertised for uri.
	Head(ctx context.Context, uri string) (Marker, error)
	// Get downloads uri.
	Get(ctx context.Context, uri string) (*Response, error)
	// ResolveAssets expands a GitHub latest-release URL into its assets. Any other URL resolves to itself.
	ResolveAssets(ctx context.Context, uri string) ([]Asset, error)
}

// Marker is the remote staleness marker.
type Marker struct {
	ETag         string
	LastModified string
}

// MarkerFrom extracts the staleness marker from response headers.
func MarkerFrom(h http.Header) Marker {
	return Marker{
		ETag:         strings.TrimSpace(h.Get("ETag")),
		LastModified: strings.TrimSpace(h.Get("Last-Modified")),
	}
}

// Response is a fully read download.
type Response struct {
	URL    string
	Header http.Header
	Body   []byte
}

// Marker returns the staleness marker of the response.
func (r *Response) Marker() Marker {
	if r == nil {
		return Marker{}
	}
	return MarkerFrom(r.Header)
}

// Filename returns the name the server suggests for the payload: the Content-Disposition filename,
// else the last URL path segment when it carries an extension, else "".
func (r *Response) Filename() string {
	if r == nil {
		return ""
	}
	if cd := r.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := path.Base(strings.ReplaceAll(params["filename"], "\\", "/")); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if path.Ext(base) == "" {
		return ""
	}
	return base
}

// Options configure a Client.
type Options struct {
	Timeout          time.Duration
	DownloadTimeout  time.Duration
	MaxDownloadBytes int64
	UserAgent        string
	GitHubAPIBase    string
	GitHubUser       string
	GitHubToken      string
}

// Client is the HTTP Gateway implementation.
type Client struct {
	api           *http.Client
	download      *http.Client
	maxBytes      int64
	userAgent     string
	apiBase       string
	user          string
	token         string
	latestRelease *regexp.Regexp
}

// NewClient returns a Client with defaults applied to unset options.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = defaultDownloadTimeout
	}
	if opts.MaxDownloadBytes <= 0 {
		opts.MaxDownloadBytes = defaultMaxDownloadBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.GitHubAPIBase == "" {
		opts.GitHubAPIBase = DefaultGitHubAPIBase
	}
	apiBase := strings.TrimRight(opts.GitHubAPIBase, "/")
	return &Client{
		api:           &http.Client{Timeout: opts.Timeout},
		download:      &http.Client{Timeout: opts.DownloadTimeout},
		maxBytes:      opts.MaxDownloadBytes,
		userAgent:     opts.UserAgent,
		apiBase:       apiBase,
		user:          opts.GitHubUser,
		token:         opts.GitHubToken,
		latestRelease: regexp.MustCompile("^" + regexp.QuoteMeta(apiBase) + `/repos/([^/]+/[^/]+)/releases/latest/?$`),
	}
}

// ValidURL reports whether uri is an absolute http(s) URL.
func ValidURL(uri string) bool {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsLatestReleaseURL reports whether uri names a GitHub repository's latest release.
func (c *Client) IsLatestReleaseURL(uri string) bool {
	release, _ := splitAssetFragment(strings.TrimSpace(uri))
	return c.latestRelease.MatchString(release)
}

// Head fetches the staleness marker for uri.
func (c *Client) Head(ctx context.Context, uri string) (Marker, error) {
	resp, err := c.do(ctx, c.api, http.MethodHead, uri, 0)
	if err != nil {
		return Marker{}, err
	}
	return resp.Marker(), nil
}

// Get downloads uri, capped at the configured maximum size.
func (c *Client) Get(ctx context.Context, uri string) (*Response, error) {
	return c.do(ctx, c.download, http.MethodGet, uri, c.maxBytes)
}

func (c *Client) isAPI(uri string) bool {
	return strings.HasPrefix(uri, c.apiBase+"/")
}

func (c *Client) newRequest(ctx context.Context, method string, uri string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, uri, nil)
	if err != nil {
		return nil, fmt.Errorf(messages.RemoteCreateRequestFmt, uri, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.isAPI(uri) {
		req.Header.Set("Accept", "application/vnd.github+json")
		switch {
		case c.user != "" && c.token != "":
			req.SetBasicAuth(c.user, c.token)
		case c.token != "":
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
	}
	return req, nil
}

// waitRetry pauses before the next attempt, returning early when ctx ends.
func waitRetry(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(retryDelay):
		return nil
	}
}

// do performs a request with one retry on transport errors and 5xx responses.
// maxBytes caps the body; zero skips reading it.
func (c *Client) do(ctx context.Context, client *http.Client, method string, uri string, maxBytes int64) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for attempt := 0; attempt <= retryCount; attempt++ {
		req, err := c.newRequest(ctx, method, uri)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			if shouldRetry(err, 0, attempt) {
				if err := waitRetry(ctx); err != nil {
					return nil, &NetworkError{URL: uri, Err: err}
				}
				continue
			}
			return nil, &NetworkError{URL: uri, Err: err}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if rateLimitErr := rateLimitErrorFromResponse(resp); rateLimitErr != nil {
				_ = resp.Body.Close()
				return nil, rateLimitErr
			}
			status := resp.StatusCode
			statusText := resp.Status
			_ = resp.Body.Close()
			if shouldRetry(nil, status, attempt) {
				if err := waitRetry(ctx); err != nil {
					return nil, &NetworkError{URL: uri, Err: err}
				}
				continue
			}
			return nil, &StatusError{URL: uri, StatusCode: status, Status: statusText}
		}

		out := &Response{URL: finalURL(resp, uri), Header: resp.Header}
		if maxBytes <= 0 {
			_ = resp.Body.Close()
			return out, nil
		}
		var buf bytes.Buffer
		n, copyErr := io.Copy(&buf, io.LimitReader(resp.Body, maxBytes+1))
		_ = resp.Body.Close()
		if copyErr != nil {
			if shouldRetry(copyErr, 0, attempt) {
				if err := waitRetry(ctx); err != nil {
					return nil, &NetworkError{URL: uri, Err: err}
				}
				continue
			}
			return nil, &NetworkError{URL: uri, Err: copyErr}
		}
		if n > maxBytes {
			return nil, fmt.Errorf(messages.RemoteTooLargeFmt+": %w", uri, maxBytes, ErrTooLarge)
		}
		out.Body = buf.Bytes()
		return out, nil
	}
	return nil, &NetworkError{URL: uri, Err: errors.New(messages.RemoteRetryExhausted)}
}

// finalURL prefers the post-redirect URL so filenames come from where the bytes were served.
func finalURL(resp *http.Response, fallback string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return fallback
}

func rateLimitErrorFromResponse(resp *http.Response) *RateLimitError {
	if resp == nil {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	// GitHub returns 403 Forbidden for unauthenticated exhaustion; confirm with rate-limit headers.
	if resp.StatusCode == http.StatusForbidden {
		remainingStr := strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining"))
		if remainingStr == "" {
			return nil
		}
		remaining, err := strconv.Atoi(remainingStr)
		if err != nil {
			return nil //nolint:nilerr // Malformed header means we cannot confirm rate limiting.
		}
		if remaining == 0 {
			return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status, Remaining: &remaining}
		}
	}
	return nil
}

func shouldRetry(err error, statusCode int, attempt int) bool {
	if attempt >= retryCount {
		return false
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	return statusCode >= 500 && statusCode <= 599
}
