package remote

import (
	"errors"
	"fmt"

	"github.com/conn-castle/yaam/internal/messages"
)

// ErrTooLarge is wrapped when a response body exceeds the configured cap.
var ErrTooLarge = errors.New("download too large")

// NetworkError reports a transport failure (DNS, connect, reset, timeout).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf(messages.RemoteRequestTimeoutFmt, e.URL)
	}
	return fmt.Sprintf(messages.RemoteRequestFailedFmt, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a timeout.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(messages.RemoteUnexpectedStatusFmt, e.URL, e.Status)
}

// RateLimitError indicates GitHub's API rate limit was hit.
type RateLimitError struct {
	StatusCode int
	Status     string
	Remaining  *int
}

func (e *RateLimitError) Error() string {
	remainingText := "unknown"
	if e.Remaining != nil {
		remainingText = fmt.Sprintf("%d", *e.Remaining)
	}
	return fmt.Sprintf(messages.RemoteRateLimitFmt, e.Status, remainingText)
}

// IsRateLimitError reports whether err represents a GitHub API rate-limit condition.
func IsRateLimitError(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// AmbiguousAssetError is returned when a release offers more than one asset and no choice was made.
type AmbiguousAssetError struct {
	URL        string
	Candidates []Asset
}

func (e *AmbiguousAssetError) Error() string {
	return fmt.Sprintf(messages.RemoteAmbiguousAssetsFmt, e.URL, len(e.Candidates))
}

// NoAssetsError is returned when a release lists no downloadable assets.
type NoAssetsError struct {
	URL string
}

func (e *NoAssetsError) Error() string {
	return fmt.Sprintf(messages.RemoteNoReleaseAssetsFmt, e.URL)
}
