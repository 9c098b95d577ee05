package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind tags the cause of a probe failure
type Kind string

const (
	KindNetwork     Kind = "NetworkError"
	KindNotFound    Kind = "NotFound"
	KindRateLimited Kind = "RateLimited"
	KindParse       Kind = "ParseError"
)

// Error is a typed probe failure carrying its cause tag
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a yt-dlp failure to a probe error kind. Extraction output is
// free text, so this goes by well-known yt-dlp phrasing; anything
// unrecognized counts as a network failure and gets retried via backoff.
func classify(err error, stderr string) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}

	text := strings.ToLower(err.Error() + " " + stderr)
	switch {
	case strings.Contains(text, "http error 429"),
		strings.Contains(text, "rate limit"),
		strings.Contains(text, "too many requests"):
		return KindRateLimited
	case strings.Contains(text, "http error 404"),
		strings.Contains(text, "does not exist"),
		strings.Contains(text, "not found"),
		strings.Contains(text, "account terminated"),
		strings.Contains(text, "unavailable"):
		return KindNotFound
	default:
		return KindNetwork
	}
}
