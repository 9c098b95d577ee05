package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the video platform an account belongs to
type Platform string

const (
	PlatformYouTube  Platform = "youtube"
	PlatformBilibili Platform = "bilibili"
)

// Account limits
const (
	// DefaultInterval is used when an account does not set one
	DefaultInterval = 5 * time.Minute

	// MaxPerPollLimit caps how many new items one poll may dispatch
	MaxPerPollLimit = 50
)

// MinInterval is the lowest poll interval an account may configure. A
// variable so tests can run listeners at millisecond speed.
var MinInterval = 10 * time.Second

// Account represents one monitored content source
type Account struct {
	ID          string
	Name        string
	Platform    Platform
	URL         string
	DownloadDir string
	Interval    time.Duration
	Enabled     bool
	MaxPerPoll  int    // 0 means unlimited
	Cookie      string // optional, forwarded to yt-dlp (Bilibili SESSDATA)
}

// Validate checks the account for configuration errors. A failing account is
// excluded from monitoring; it never aborts the process.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("account has no id")
	}
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("account %s has no source URL", a.ID)
	}
	switch a.Platform {
	case PlatformYouTube, PlatformBilibili:
	default:
		return fmt.Errorf("account %s has unknown platform %q", a.ID, a.Platform)
	}
	if a.Interval < MinInterval {
		return fmt.Errorf("account %s interval %s is below minimum %s", a.ID, a.Interval, MinInterval)
	}
	if a.MaxPerPoll < 0 || a.MaxPerPoll > MaxPerPollLimit {
		return fmt.Errorf("account %s max_per_poll %d out of range [0, %d]", a.ID, a.MaxPerPoll, MaxPerPollLimit)
	}
	return nil
}

// DisplayName returns the name, falling back to the id
func (a *Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
