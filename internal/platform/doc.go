package platform

// Package platform contains filesystem glue shared by the dispatcher and the
// listeners: directory creation, destination scanning, and filename
// sanitizing for yt-dlp output templates.
