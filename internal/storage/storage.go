package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Reader.Get for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// PutOptions carries the object metadata that writers record when they can.
type PutOptions struct {
	ContentType     string `json:"content_type,omitempty"`
	CacheControl    string `json:"cache_control,omitempty"`
	ContentEncoding string `json:"content_encoding,omitempty"`
}

// Reader fetches raw objects addressed by bucket and key.
type Reader interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// List returns the keys under prefix in ascending order.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Writer stores objects addressed by bucket and key.
type Writer interface {
	Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error
}

// JSONOptions is the metadata of the published schedule document.
var JSONOptions = PutOptions{
	ContentType:  "application/json",
	CacheControl: "max-age=60",
}

// MultiWriter fans a Put out to every writer in order and stops at the
// first failure.
type MultiWriter []Writer

func (m MultiWriter) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	for _, w := range m {
		if w == nil {
			continue
		}
		if err := w.Put(ctx, bucket, key, body, opts); err != nil {
			return err
		}
	}
	return nil
}
