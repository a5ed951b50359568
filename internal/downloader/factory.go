package downloader

import (
	"fmt"

	"github.com/jaki95/dj-transition/config"
	"github.com/jaki95/dj-transition/internal/domain"
)

// Registry picks the downloader for a source URL.
type Registry struct {
	downloaders []Downloader
}

// NewRegistry builds the downloaders enabled by cfg.
func NewRegistry(cfg *config.Config) *Registry {
	downloaders := []Downloader{
		NewHTTPDownloader(cfg.Mix.FetchTimeout),
		NewGCSDownloader(cfg.Sources.GCSCredentialsFile),
	}
	if cfg.Sources.AllowLocal {
		downloaders = append(downloaders, NewLocalDownloader())
	}
	return NewRegistryWith(downloaders...)
}

// NewRegistryWith builds a registry from explicit downloaders, checked in order.
func NewRegistryWith(downloaders ...Downloader) *Registry {
	return &Registry{downloaders: downloaders}
}

// For returns the first downloader supporting url.
func (r *Registry) For(url string) (Downloader, error) {
	for _, d := range r.downloaders {
		if d.SupportsURL(url) {
			return d, nil
		}
	}
	return nil, &domain.FetchError{
		URL: url,
		Err: fmt.Errorf("%w: no downloader available", domain.ErrUnsupportedURL),
	}
}
