package dispatch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/ytget/yt-monitor/internal/model"
	"github.com/ytget/yt-monitor/internal/platform"
)

// Quality presets for downloads
type QualityPreset string

const (
	QualityBest   QualityPreset = "best"
	QualityMedium QualityPreset = "medium"
	QualityAudio  QualityPreset = "audio"
)

// Format selectors per preset
const (
	FormatBest   = "bestvideo+bestaudio/best"
	FormatMedium = "best[height<=720]/best"
	FormatAudio  = "bestaudio/best"
)

// Timeout constants
const (
	DefaultDownloadTimeout = time.Hour
)

// Dispatcher downloads a single item into the account's destination
// directory. Implementations must be safe for concurrent use by many
// listeners.
type Dispatcher interface {
	Download(ctx context.Context, account model.Account, item model.Item) error
}

// YTDLP dispatches downloads through the yt-dlp CLI
type YTDLP struct {
	quality QualityPreset
	timeout time.Duration
}

// New creates a dispatcher with the given quality preset
func New(quality QualityPreset) *YTDLP {
	return &YTDLP{
		quality: quality,
		timeout: DefaultDownloadTimeout,
	}
}

// SetTimeout sets the per-download timeout
func (d *YTDLP) SetTimeout(timeout time.Duration) {
	d.timeout = timeout
}

// Download fetches one item. The destination subdirectory is created on
// demand; a failure comes back as *Error with a cause tag and leaves the item
// eligible for retry.
func (d *YTDLP) Download(ctx context.Context, account model.Account, item model.Item) error {
	dest := DestinationDir(account)
	if err := platform.CreateDirectoryIfNotExists(dest); err != nil {
		return &Error{Kind: KindDisk, ItemID: item.ID, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	dl := ytdlp.New().
		RestrictFilenames().
		Format(formatSelector(d.quality)).
		Output(OutputTemplate(dest, account, item))
	if account.Cookie != "" {
		dl = dl.AddHeaders("Cookie: SESSDATA=" + account.Cookie)
	}

	result, err := dl.Run(ctx, item.URL)
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = result.Stderr
		}
		return &Error{Kind: classify(err, stderr), ItemID: item.ID, Err: err}
	}
	return nil
}

// DestinationDir returns the per-account download directory. Every account
// gets its own subfolder under its configured download root.
func DestinationDir(account model.Account) string {
	return filepath.Join(account.DownloadDir, platform.SanitizeFilename(account.DisplayName()))
}

// OutputTemplate builds the yt-dlp output template for one item. The item id
// stays in the filename so the destination pre-check can match it later.
func OutputTemplate(dest string, account model.Account, item model.Item) string {
	prefix := platform.SanitizeFilename(account.DisplayName() + "_" + item.Title)
	return filepath.Join(dest, prefix+"_%(id)s.%(ext)s")
}

func formatSelector(quality QualityPreset) string {
	switch quality {
	case QualityMedium:
		return FormatMedium
	case QualityAudio:
		return FormatAudio
	default:
		return FormatBest
	}
}
