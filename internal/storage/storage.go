// Package storage defines the object store used for training data, model
// bundles, and run artifacts, plus a local-directory implementation.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Object is a whole stored object.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
}

// ObjectStore reads and writes whole objects addressed by bucket and key.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) (Object, error)
	Put(ctx context.Context, bucket string, obj Object) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Dir stores objects as files under Root/<bucket>/<key>. Content types are
// not persisted.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Path returns the file that holds bucket/key.
func (d *Dir) Path(bucket, key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(d.Root, bucket, clean), nil
}

func (d *Dir) Get(ctx context.Context, bucket, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	p, err := d.Path(bucket, key)
	if err != nil {
		return Object{}, err
	}
	body, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Object{}, fmt.Errorf("get %s/%s: %w", bucket, key, ErrNotFound)
	}
	if err != nil {
		return Object{}, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	return Object{Key: key, Body: body}, nil
}

func (d *Dir) Put(ctx context.Context, bucket string, obj Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := d.Path(bucket, obj.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, obj.Key, err)
	}
	if err := os.WriteFile(p, obj.Body, 0o644); err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, obj.Key, err)
	}
	return nil
}

// List returns every key under prefix in lexical order.
func (d *Dir) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := filepath.Join(d.Root, bucket)
	var keys []string
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return fs.SkipAll
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
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
		return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}
