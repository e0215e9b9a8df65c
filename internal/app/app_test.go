package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/pipeline"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
)

func localConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Storage = config.Storage{Backend: "local", LocalRoot: t.TempDir()}
	cfg.AWS.BucketName = "flights"
	return cfg
}

func TestOpenStore(t *testing.T) {
	cfg := localConfig(t)
	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	dir, ok := store.(*storage.Dir)
	require.True(t, ok)
	assert.Equal(t, cfg.Storage.LocalRoot, dir.Root)

	cfg.Storage.Backend = "gcs"
	_, err = OpenStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "gcs")
}

func TestSource(t *testing.T) {
	cfg := localConfig(t)
	store := storage.NewDir(cfg.Storage.LocalRoot)

	src := Source(cfg, store)
	assert.Equal(t, &pipeline.ObjectSource{Store: store, Bucket: "flights", Key: "flight_data_2021.csv"}, src)

	cfg.RunConfig.Input = filepath.Join("data", "flights.xlsx")
	assert.Equal(t, &pipeline.FileSource{Path: cfg.RunConfig.Input}, Source(cfg, store))
}

func TestBuildPipeline(t *testing.T) {
	cfg := localConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, cleanup, err := BuildPipeline(context.Background(), cfg, logger, observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NotNil(t, p)
	cleanup()
}
