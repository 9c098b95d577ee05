package dispatch

// Package dispatch downloads one item to an account's destination directory
// via yt-dlp. A dispatcher call either fully succeeds or fails with a typed
// error; recording the item as seen is the caller's job and must only happen
// on success.
