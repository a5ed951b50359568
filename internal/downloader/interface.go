package downloader

import (
	"context"
)

// Downloader fetches a remote audio source into a local staging directory.
type Downloader interface {
	// Download fetches url into outputDir and returns the path of the
	// written file.
	Download(ctx context.Context, url, outputDir string) (string, error)

	// SupportsURL checks if this downloader can handle the given URL
	SupportsURL(url string) bool
}
