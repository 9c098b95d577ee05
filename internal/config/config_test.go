package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ytget/yt-monitor/internal/logger"
	"github.com/ytget/yt-monitor/internal/model"
)

const sampleConfig = `
download_dir: /srv/media
ledger_path: /var/lib/yt-monitor/ledger.db
quality: medium
probe_timeout: 30
accounts:
  - id: a1
    name: Channel One
    platform: youtube
    url: https://www.youtube.com/@one
    interval: 120
    enabled: true
    max_per_poll: 3
  - id: a2
    name: Space Two
    platform: bilibili
    url: https://space.bilibili.com/2
    download_dir: /srv/bili
    enabled: false
    cookie: sess-secret
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Equal(t, "/srv/media", cfg.DownloadDir)
	require.Equal(t, "/var/lib/yt-monitor/ledger.db", cfg.LedgerPath)
	require.Equal(t, "medium", cfg.Quality)
	require.Equal(t, 30*time.Second, cfg.ProbeTimeout())

	// Unset globals fall back to defaults.
	require.Equal(t, time.Duration(DefaultDispatchTimeout)*time.Second, cfg.DispatchTimeout())
	require.Equal(t, time.Duration(DefaultBackoffBase)*time.Second, cfg.BackoffBase())
	require.Equal(t, time.Duration(DefaultBackoffMax)*time.Second, cfg.BackoffMax())

	accounts, errs := cfg.ToAccounts()
	require.Empty(t, errs)
	require.Len(t, accounts, 2)

	a1 := accounts[0]
	require.Equal(t, "a1", a1.ID)
	require.Equal(t, model.PlatformYouTube, a1.Platform)
	require.Equal(t, 2*time.Minute, a1.Interval)
	require.Equal(t, "/srv/media", a1.DownloadDir, "global download dir applies by default")
	require.Equal(t, 3, a1.MaxPerPoll)
	require.True(t, a1.Enabled)

	a2 := accounts[1]
	require.Equal(t, "/srv/bili", a2.DownloadDir, "per-account download dir wins")
	require.Equal(t, time.Duration(DefaultIntervalSec)*time.Second, a2.Interval)
	require.Equal(t, "sess-secret", a2.Cookie)
	require.False(t, a2.Enabled)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultDownloadDir, cfg.DownloadDir)
	require.Empty(t, cfg.Accounts)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "accounts: [not: closed"))
	require.Error(t, err)
}

func TestToAccounts_MalformedEntryExcludedOthersKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
download_dir: /srv/media
accounts:
  - id: good
    platform: youtube
    url: https://www.youtube.com/@good
    enabled: true
  - id: ""
    platform: youtube
    url: https://www.youtube.com/@noid
    enabled: true
  - id: badplatform
    platform: myspace
    url: https://example.com
    enabled: true
  - id: good
    platform: youtube
    url: https://www.youtube.com/@dup
    enabled: true
`))
	require.NoError(t, err)

	accounts, errs := cfg.ToAccounts()
	require.Len(t, accounts, 1, "only the well-formed, non-duplicate account survives")
	require.Equal(t, "good", accounts[0].ID)
	require.Len(t, errs, 3)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Accounts = []AccountConfig{{
		ID:       "a1",
		Name:     "Channel One",
		Platform: "youtube",
		URL:      "https://www.youtube.com/@one",
		Enabled:  true,
	}}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.DownloadDir, loaded.DownloadDir)
	require.Len(t, loaded.Accounts, 1)
	require.Equal(t, "a1", loaded.Accounts[0].ID)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	var mu sync.Mutex
	var got *Config
	apply := func(cfg *Config) {
		mu.Lock()
		got = cfg
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, path, logger.NewNop(), apply)
	}()

	// Give the watcher a moment to register before mutating the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("download_dir: /elsewhere\n"), 0644))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		ok := got != nil && got.DownloadDir == "/elsewhere"
		mu.Unlock()
		if ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	require.NotNil(t, got, "watcher never delivered a reload")
	require.Equal(t, "/elsewhere", got.DownloadDir)
	mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not exit on context cancel")
	}
}
