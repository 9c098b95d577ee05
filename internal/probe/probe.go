package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/ytget/yt-monitor/internal/model"
)

// Timeout constants
const (
	DefaultFetchTimeout = 60 * time.Second
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Prober lists the currently available items for an account. Ordering of the
// returned slice is whatever the platform reports (newest first for channel
// pages); callers must not rely on it beyond iteration.
type Prober interface {
	Fetch(ctx context.Context, account model.Account) ([]model.Item, error)
}

// YTDLP probes accounts through the yt-dlp CLI
type YTDLP struct {
	timeout time.Duration
}

// New creates a prober with the default fetch timeout
func New() *YTDLP {
	return &YTDLP{timeout: DefaultFetchTimeout}
}

// SetTimeout sets the per-fetch timeout
func (p *YTDLP) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Fetch runs a flat extraction against the account URL and returns the items
// it lists. Failures come back as *Error with a cause tag.
func (p *YTDLP) Fetch(ctx context.Context, account model.Account) ([]model.Item, error) {
	url := PrepareURL(account.URL, account.Platform)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		SkipDownload().
		FlatPlaylist().
		DumpJSON()
	if account.Cookie != "" {
		dl = dl.AddHeaders("Cookie: SESSDATA=" + account.Cookie)
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = result.Stderr
		}
		return nil, &Error{Kind: classify(err, stderr), URL: url, Err: err}
	}

	items, err := parseFlatJSON(result.Stdout)
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: url, Err: err}
	}
	return items, nil
}

// PrepareURL normalizes an account URL for extraction. YouTube channel pages
// need a /videos suffix to list uploads instead of the channel landing page.
func PrepareURL(url string, platform model.Platform) string {
	if platform != model.PlatformYouTube {
		return url
	}
	if !strings.Contains(url, "youtube.com") && !strings.Contains(url, "youtu.be") {
		return url
	}
	if strings.Contains(url, "/videos") || strings.Contains(url, "/live") {
		return url
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url + "videos"
}

// flatEntry is one JSON line of yt-dlp --flat-playlist --dump-json output
type flatEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Timestamp  float64 `json:"timestamp"`
	IsLive     bool    `json:"is_live"`
	LiveStatus string  `json:"live_status"`
}

// parseFlatJSON parses JSON-lines extraction output into items. Lines that
// are not valid JSON or lack an id are skipped. Empty output is an empty
// channel, not an error; non-empty output with no usable entries is a parse
// failure.
func parseFlatJSON(output string) ([]model.Item, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return nil, nil
	}

	lines := strings.Split(trimmed, "\n")
	items := make([]model.Item, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry flatEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.ID == "" {
			continue
		}

		url := entry.URL
		if url == "" {
			url = fmt.Sprintf(YouTubeVideoURLTemplate, entry.ID)
		}
		var published time.Time
		if entry.Timestamp > 0 {
			published = time.Unix(int64(entry.Timestamp), 0).UTC()
		}

		items = append(items, model.Item{
			ID:          entry.ID,
			Title:       entry.Title,
			URL:         url,
			PublishedAt: published,
			IsLive:      entry.IsLive || entry.LiveStatus == "is_live",
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no usable entries in extraction output")
	}
	return items, nil
}
