package downloader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaki95/dj-transition/internal/domain"
)

// LocalDownloader copies file:// sources into the staging directory so every
// source is cleaned up the same way.
type LocalDownloader struct{}

func NewLocalDownloader() *LocalDownloader {
	return &LocalDownloader{}
}

func (d *LocalDownloader) SupportsURL(url string) bool {
	return strings.HasPrefix(url, "file://")
}

func (d *LocalDownloader) Download(ctx context.Context, sourceURL, outputDir string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Path == "" {
		return "", &domain.FetchError{URL: sourceURL, Err: fmt.Errorf("%w: invalid file url", domain.ErrUnsupportedURL)}
	}

	in, err := os.Open(u.Path)
	if err != nil {
		return "", &domain.FetchError{URL: sourceURL, Err: err}
	}
	defer in.Close()

	outputPath := filepath.Join(outputDir, filepath.Base(u.Path))
	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, contextReader{ctx: ctx, r: in}); err != nil {
		return "", &domain.FetchError{URL: sourceURL, Err: err}
	}
	return outputPath, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
