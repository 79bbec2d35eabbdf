package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/andybalholm/brotli"
)

// BrotliWriter stores every JSON object twice: as is, and brotli compressed
// under key + ".br" so static file servers can serve the precompressed copy.
type BrotliWriter struct {
	Next  Writer
	Level int
}

func NewBrotliWriter(next Writer) *BrotliWriter {
	return &BrotliWriter{Next: next, Level: brotli.BestCompression}
}

func (w *BrotliWriter) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	if !strings.HasSuffix(key, ".json") {
		return w.Next.Put(ctx, bucket, key, body, opts)
	}

	compressed, err := Compress(body, w.Level)
	if err != nil {
		return fmt.Errorf("storage: brotli %s/%s: %w", bucket, key, err)
	}
	brOpts := opts
	brOpts.ContentEncoding = "br"
	if err := w.Next.Put(ctx, bucket, key+".br", compressed, brOpts); err != nil {
		return err
	}
	// the plain key goes last; it is the one clients poll
	return w.Next.Put(ctx, bucket, key, body, opts)
}

// Compress brotli-encodes body at the given quality level.
func Compress(body []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, level)
	if _, err := bw.Write(body); err != nil {
		bw.Close()
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
