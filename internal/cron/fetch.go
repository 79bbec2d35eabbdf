package cron

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/storage"
)

const userAgent = "lessonboard-fetcher/1.0"

// Fetcher downloads the orders export and drops it into the input bucket.
type Fetcher struct {
	URL    string
	Client *http.Client
	Writer storage.Writer
	Bucket string
	Logger *zap.Logger

	now func() time.Time
}

func NewFetcher(url string, w storage.Writer, bucket string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
		Writer: w,
		Bucket: bucket,
		Logger: logger,
		now:    time.Now,
	}
}

// OrdersKey names a fetched export by its UTC fetch time.
func OrdersKey(t time.Time) string {
	return "orders/orders-" + t.UTC().Format("2006-01-02-150405") + ".tsv"
}

// Fetch stores one snapshot and returns its key.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch: %s: status %d", f.URL, resp.StatusCode)
	}

	now := time.Now
	if f.now != nil {
		now = f.now
	}
	key := OrdersKey(now())
	opts := storage.PutOptions{ContentType: "text/tab-separated-values"}
	if err := f.Writer.Put(ctx, f.Bucket, key, body, opts); err != nil {
		return "", err
	}

	f.Logger.Info("orders fetched", zap.String("key", key), zap.Int("bytes", len(body)))
	return key, nil
}
