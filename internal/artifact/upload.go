package artifact

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
)

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".yaml": "application/yaml",
	".gob":  "application/octet-stream",
}

// UploadResult lists what Upload put and what it skipped.
type UploadResult struct {
	URIs   []string
	Failed []error
}

// Upload puts every regular file in dir under <prefix>/<file name> in bucket.
// A file that cannot be read or stored is logged and skipped. Only a failure
// to list dir is returned as an error.
func Upload(ctx context.Context, dir string, store storage.ObjectStore, bucket, prefix string, logger *slog.Logger) (UploadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return UploadResult{}, &IOError{Op: "list", Path: dir, Err: err}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var res UploadResult
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		key := path.Join(prefix, name)

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			err = &IOError{Op: "read", Path: filepath.Join(dir, name), Err: err}
			logger.Error("artifact upload skipped", "file", name, "error", err)
			res.Failed = append(res.Failed, err)
			continue
		}

		obj := storage.Object{Key: key, Body: body, ContentType: contentTypes[filepath.Ext(name)]}
		if err := store.Put(ctx, bucket, obj); err != nil {
			err = &IOError{Op: "upload", Path: bucket + "/" + key, Err: err}
			logger.Error("artifact upload failed", "file", name, "bucket", bucket, "key", key, "error", err)
			res.Failed = append(res.Failed, err)
			continue
		}
		uri := bucket + "/" + key
		logger.Info("artifact uploaded", "uri", uri)
		res.URIs = append(res.URIs, uri)
	}
	return res, nil
}
