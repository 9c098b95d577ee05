package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind tags the cause of a dispatch failure
type Kind string

const (
	KindNetwork     Kind = "NetworkError"
	KindDisk        Kind = "DiskError"
	KindUnsupported Kind = "UnsupportedItem"
	KindUnknown     Kind = "Unknown"
)

// Error is a typed dispatch failure carrying its cause tag
type Error struct {
	Kind   Kind
	ItemID string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch %s: %s: %v", e.ItemID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a yt-dlp download failure to a dispatch error kind
func classify(err error, stderr string) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}

	text := strings.ToLower(err.Error() + " " + stderr)
	switch {
	case strings.Contains(text, "no space left"),
		strings.Contains(text, "disk full"),
		strings.Contains(text, "read-only file system"),
		strings.Contains(text, "permission denied"):
		return KindDisk
	case strings.Contains(text, "unsupported url"),
		strings.Contains(text, "no video formats"),
		strings.Contains(text, "requested format is not available"):
		return KindUnsupported
	case strings.Contains(text, "timed out"),
		strings.Contains(text, "timeout"),
		strings.Contains(text, "connection"),
		strings.Contains(text, "http error"),
		strings.Contains(text, "network"):
		return KindNetwork
	default:
		return KindUnknown
	}
}
