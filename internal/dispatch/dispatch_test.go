package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/yt-monitor/internal/model"
)

func testAccount() model.Account {
	return model.Account{
		ID:          "a1",
		Name:        "Some Channel",
		Platform:    model.PlatformYouTube,
		URL:         "https://www.youtube.com/@somechannel",
		DownloadDir: "/tmp/downloads",
		Interval:    time.Minute,
	}
}

func TestDestinationDir(t *testing.T) {
	acc := testAccount()

	dest := DestinationDir(acc)
	expected := filepath.Join("/tmp/downloads", "Some Channel")
	if dest != expected {
		t.Errorf("DestinationDir() = %q, expected %q", dest, expected)
	}

	// Names with path separators must not escape the download root
	acc.Name = "evil/../name"
	dest = DestinationDir(acc)
	if filepath.Dir(dest) != "/tmp/downloads" {
		t.Errorf("Expected destination directly under download root, got %q", dest)
	}
}

func TestOutputTemplate(t *testing.T) {
	acc := testAccount()
	item := model.Item{ID: "abc123", Title: "My: Video?"}

	tmpl := OutputTemplate("/tmp/downloads/Some Channel", acc, item)

	if !strings.HasPrefix(tmpl, "/tmp/downloads/Some Channel/") {
		t.Errorf("Expected template under destination dir, got %q", tmpl)
	}
	if !strings.HasSuffix(tmpl, "_%(id)s.%(ext)s") {
		t.Errorf("Expected id placeholder suffix, got %q", tmpl)
	}
	if strings.ContainsAny(filepath.Base(tmpl), ":?") {
		t.Errorf("Expected sanitized filename, got %q", tmpl)
	}
}

func TestFormatSelector(t *testing.T) {
	tests := []struct {
		quality  QualityPreset
		expected string
	}{
		{QualityBest, FormatBest},
		{QualityMedium, FormatMedium},
		{QualityAudio, FormatAudio},
		{QualityPreset("bogus"), FormatBest},
	}

	for _, test := range tests {
		result := formatSelector(test.quality)
		if result != test.expected {
			t.Errorf("formatSelector(%s) = %q, expected %q", test.quality, result, test.expected)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		stderr   string
		expected Kind
	}{
		{"deadline", context.DeadlineExceeded, "", KindNetwork},
		{"disk full", errors.New("exit status 1"), "ERROR: unable to write: No space left on device", KindDisk},
		{"permission", errors.New("exit status 1"), "ERROR: Permission denied", KindDisk},
		{"unsupported", errors.New("exit status 1"), "ERROR: Unsupported URL: https://example.com", KindUnsupported},
		{"no formats", errors.New("exit status 1"), "ERROR: No video formats found", KindUnsupported},
		{"http error", errors.New("exit status 1"), "ERROR: HTTP Error 503", KindNetwork},
		{"mystery", errors.New("exit status 1"), "something odd happened", KindUnknown},
	}

	for _, test := range tests {
		result := classify(test.err, test.stderr)
		if result != test.expected {
			t.Errorf("%s: classify() = %s, expected %s", test.name, result, test.expected)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Kind: KindUnknown, ItemID: "v1", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}

	var de *Error
	if !errors.As(error(err), &de) {
		t.Fatal("Expected errors.As to match *Error")
	}
	if de.ItemID != "v1" {
		t.Errorf("Expected item id 'v1', got %q", de.ItemID)
	}
}
