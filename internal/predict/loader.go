package predict

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
)

// ErrUnknownModel is returned for a model id with no configured key.
var ErrUnknownModel = errors.New("unknown model")

// ModelLoadError reports a bundle that could not be fetched or decoded.
type ModelLoadError struct {
	ID  string
	Key string
	Err error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s from %s: %v", e.ID, e.Key, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// Loader returns the bundle for a model id.
type Loader interface {
	Load(ctx context.Context, id string) (*model.Bundle, error)
}

// StoreLoader reads gob bundles from an object store.
type StoreLoader struct {
	store  storage.ObjectStore
	bucket string
	keys   map[string]string
}

// NewStoreLoader maps model ids to keys in bucket.
func NewStoreLoader(store storage.ObjectStore, bucket string, keys map[string]string) *StoreLoader {
	return &StoreLoader{store: store, bucket: bucket, keys: keys}
}

// Key returns the object key configured for id.
func (l *StoreLoader) Key(id string) (string, bool) {
	key, ok := l.keys[id]
	return key, ok && key != ""
}

func (l *StoreLoader) Load(ctx context.Context, id string) (*model.Bundle, error) {
	key, ok := l.Key(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	obj, err := l.store.Get(ctx, l.bucket, key)
	if err != nil {
		return nil, &ModelLoadError{ID: id, Key: key, Err: err}
	}
	b, err := model.Load(bytes.NewReader(obj.Body))
	if err != nil {
		return nil, &ModelLoadError{ID: id, Key: key, Err: err}
	}
	if string(b.Family) != id {
		return nil, &ModelLoadError{ID: id, Key: key, Err: fmt.Errorf("object holds a %s bundle", b.Family)}
	}
	return b, nil
}
