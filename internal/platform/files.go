package platform

import (
	"os"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Filename limits
const (
	MaxSanitizedLength = 80
)

// File extensions that mark unfinished downloads
var (
	SkippedExtensions = []string{".part", ".ytdl"}
)

// Characters invalid in Windows filenames, plus lookalikes that cause issues
// (division slash, big solidus, ideographic full stop)
var invalidFilenameChars = "<>:\"/\\|?*÷⧸∕。"

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// SanitizeFilename replaces characters that are invalid in filenames, drops
// control characters, and caps the length so the full output path stays
// within OS limits.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 32 {
			continue
		}
		if strings.ContainsRune(invalidFilenameChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	sanitized := b.String()
	if len(sanitized) > MaxSanitizedLength {
		sanitized = sanitized[:MaxSanitizedLength]
	}
	return strings.TrimSpace(sanitized)
}

// FileWithIDExists reports whether a finished file whose name contains the
// item id is already present in the directory. Partial downloads (.part,
// .ytdl) do not count.
func FileWithIDExists(dir, itemID string) (bool, error) {
	if itemID == "" {
		return false, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isPartialFile(name) {
			continue
		}
		if strings.Contains(name, itemID) {
			return true, nil
		}
	}
	return false, nil
}

func isPartialFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
