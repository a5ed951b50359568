package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jaki95/dj-transition/internal/domain"
)

const gcsScheme = "gs://"

// GCSDownloader fetches gs://bucket/object sources from Google Cloud Storage.
// The client is created on first use so servers without GCS credentials
// still start.
type GCSDownloader struct {
	credentialsFile string

	once      sync.Once
	client    *storage.Client
	clientErr error
}

// NewGCSDownloader creates a GCS downloader. An empty credentialsFile uses
// application default credentials.
func NewGCSDownloader(credentialsFile string) *GCSDownloader {
	return &GCSDownloader{credentialsFile: credentialsFile}
}

func (d *GCSDownloader) SupportsURL(url string) bool {
	return strings.HasPrefix(url, gcsScheme)
}

func (d *GCSDownloader) Download(ctx context.Context, url, outputDir string) (string, error) {
	bucket, object, err := parseGCSURL(url)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: err}
	}

	client, err := d.getClient(ctx)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: err}
	}

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return "", &domain.FetchError{URL: url, StatusCode: http.StatusNotFound, Err: err}
		}
		return "", &domain.FetchError{URL: url, Err: fmt.Errorf("failed to open object: %w", err)}
	}
	defer reader.Close()

	outputPath := filepath.Join(outputDir, stagingName(path.Base(object)))
	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	bytesWritten, err := io.Copy(outFile, reader)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: fmt.Errorf("failed to read object: %w", err)}
	}

	slog.Debug("Downloaded GCS object", "bucket", bucket, "object", object, "size", bytesWritten)
	return outputPath, nil
}

func (d *GCSDownloader) getClient(ctx context.Context) (*storage.Client, error) {
	d.once.Do(func() {
		// The client outlives the request that created it
		clientCtx := context.WithoutCancel(ctx)
		if d.credentialsFile != "" {
			d.client, d.clientErr = storage.NewClient(clientCtx, option.WithCredentialsFile(d.credentialsFile))
		} else {
			d.client, d.clientErr = storage.NewClient(clientCtx)
		}
		if d.clientErr != nil {
			d.clientErr = fmt.Errorf("failed to create GCS client: %w", d.clientErr)
		}
	})
	return d.client, d.clientErr
}

// parseGCSURL splits gs://bucket/path/to/object.
func parseGCSURL(url string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(url, gcsScheme)
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", fmt.Errorf("%w: expected gs://bucket/object", domain.ErrUnsupportedURL)
	}
	return bucket, object, nil
}
