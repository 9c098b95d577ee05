package probe

// Package probe lists the currently available items for an account by running
// yt-dlp in flat-extraction mode. It performs a single fetch per call; retry
// and backoff belong to the listener.
