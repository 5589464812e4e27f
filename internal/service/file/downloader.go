package file

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Downloader fetches the bytes behind a file URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type HTTPDownloader struct {
	client *resty.Client
}

// NewHTTPDownloader returns a GET downloader. A zero timeout keeps the
// client default.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPDownloader{client: client}
}

func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}
