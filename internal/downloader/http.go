package downloader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaki95/dj-transition/internal/domain"
)

// DefaultTimeout bounds a single source fetch.
const DefaultTimeout = 30 * time.Second

// sniffLen is how much of a body is inspected for an HTML page.
const sniffLen = 512

// HTTPDownloader handles downloading from generic HTTP URLs
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader creates a new HTTP downloader
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPDownloader{
		client: &http.Client{Timeout: timeout},
	}
}

// SupportsURL checks if the URL is an HTTP/HTTPS URL
func (d *HTTPDownloader) SupportsURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Download downloads audio from an HTTP URL
func (d *HTTPDownloader) Download(ctx context.Context, downloadUrl, outputDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadUrl, nil)
	if err != nil {
		return "", &domain.FetchError{URL: downloadUrl, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", "dj-transition/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: downloadUrl, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.FetchError{URL: downloadUrl, StatusCode: resp.StatusCode}
	}

	outputPath := filepath.Join(outputDir, filenameFor(downloadUrl, resp.Header.Get("Content-Disposition")))
	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	body := bufio.NewReaderSize(resp.Body, sniffLen)
	head, _ := body.Peek(sniffLen)
	if looksLikeHTML(resp.Header.Get("Content-Type"), head) {
		slog.Warn("Source looks like an HTML page, not audio - check the URL",
			"url", downloadUrl,
			"contentType", resp.Header.Get("Content-Type"),
		)
	}

	bytesWritten, err := io.Copy(outFile, body)
	if err != nil {
		return "", &domain.FetchError{URL: downloadUrl, Err: fmt.Errorf("failed to save body: %w", err)}
	}

	slog.Debug("Downloaded audio source", "url", downloadUrl, "path", outputPath, "size", bytesWritten)
	return outputPath, nil
}

// filenameFor picks a staging filename from Content-Disposition or the URL
// path. Only the base name is used so a hostile header cannot escape the
// staging directory.
func filenameFor(downloadUrl, contentDisposition string) string {
	filename := "audio_file"

	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	} else if u, err := url.Parse(downloadUrl); err == nil && u.Path != "" {
		if name := filepath.Base(u.Path); name != "" && name != "." && name != "/" {
			filename = name
		}
	}

	return stagingName(filename)
}

// stagingName reduces name to a single path element that stays inside the
// staging directory.
func stagingName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || name == ".." || name == "" {
		return "audio_file"
	}
	return name
}

func looksLikeHTML(contentType string, head []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "text/html" {
		return true
	}
	lower := bytes.ToLower(bytes.TrimSpace(head))
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype"))
}
