package platform

// Package platform contains filesystem and external tooling glue: directory
// setup, TTL-based cleanup of the downloads directory, safe filename
// handling for served files, and playlist expansion via the ytdlp library.
