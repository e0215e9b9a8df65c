package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
)

// Source reads the raw flight records for a run.
type Source interface {
	Read(ctx context.Context) (dataframe.DataFrame, error)
	String() string
}

// ObjectSource reads one object from a bucket.
type ObjectSource struct {
	Store  storage.ObjectStore
	Bucket string
	Key    string
}

func (s *ObjectSource) Read(ctx context.Context) (dataframe.DataFrame, error) {
	obj, err := s.Store.Get(ctx, s.Bucket, s.Key)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("extract %s: %w", s, err)
	}
	df, err := domain.LoadFlights(s.Key, bytes.NewReader(obj.Body))
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("extract %s: %w", s, err)
	}
	return df, nil
}

func (s *ObjectSource) String() string { return s.Bucket + "/" + s.Key }

// FileSource reads a local CSV or XLSX file.
type FileSource struct {
	Path string
}

func (s *FileSource) Read(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("extract %s: %w", s.Path, err)
	}
	defer f.Close()

	df, err := domain.LoadFlights(s.Path, f)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("extract %s: %w", s.Path, err)
	}
	return df, nil
}

func (s *FileSource) String() string { return s.Path }
