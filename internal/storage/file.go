package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const metaDir = ".meta"

// FileStore keeps objects on the local filesystem: one directory per bucket
// under Root, keys are slash separated paths inside it. Metadata passed to
// Put is kept next to the bucket under .meta/.
type FileStore struct {
	Root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return &FileStore{Root: root}, nil
}

// Path returns the filesystem path of an object.
func (s *FileStore) Path(bucket, key string) (string, error) {
	if !filepath.IsLocal(bucket) || strings.ContainsAny(bucket, `/\`) {
		return "", fmt.Errorf("storage: invalid bucket %q", bucket)
	}
	rel := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	if first := strings.SplitN(key, "/", 2)[0]; first == metaDir {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.Root, bucket, rel), nil
}

func (s *FileStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.Path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *FileStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := filepath.Join(s.Root, bucket)
	var keys []string

	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == base {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == metaDir && filepath.Dir(p) == base {
				return fs.SkipDir
			}
			return nil
		}
		// temp files of an in-flight Put
		if strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %s/%s: %w", bucket, prefix, err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Put writes body atomically: readers see either the old or the new object.
func (s *FileStore) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.Path(bucket, key)
	if err != nil {
		return err
	}
	if err := writeAtomic(p, body); err != nil {
		return fmt.Errorf("storage: write %s/%s: %w", bucket, key, err)
	}

	if opts == (PutOptions{}) {
		return nil
	}
	meta, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	mp := filepath.Join(s.Root, bucket, metaDir, filepath.FromSlash(key)+".json")
	if err := writeAtomic(mp, meta); err != nil {
		return fmt.Errorf("storage: write metadata %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Meta returns the options recorded by the last Put of an object.
func (s *FileStore) Meta(bucket, key string) (PutOptions, error) {
	var opts PutOptions
	if _, err := s.Path(bucket, key); err != nil {
		return opts, err
	}
	data, err := os.ReadFile(filepath.Join(s.Root, bucket, metaDir, filepath.FromSlash(key)+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return opts, nil
	}
	if err != nil {
		return opts, err
	}
	err = json.Unmarshal(data, &opts)
	return opts, err
}

func writeAtomic(path string, body []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
