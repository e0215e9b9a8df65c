package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/artifact"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/mockdata"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/pipeline"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/train"
)

// --- mocks ---

type mockNotifier struct {
	summaries []domain.RunSummary
	err       error
}

func (m *mockNotifier) Notify(_ context.Context, s domain.RunSummary) error {
	m.summaries = append(m.summaries, s)
	return m.err
}

// flakyStore fails every Put whose key ends in suffix.
type flakyStore struct {
	storage.ObjectStore
	suffix string
}

func (f *flakyStore) Put(ctx context.Context, bucket string, obj storage.Object) error {
	if filepath.Ext(obj.Key) == f.suffix {
		return errors.New("slow down")
	}
	return f.ObjectStore.Put(ctx, bucket, obj)
}

var runTime = time.Date(2021, 12, 1, 8, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFlights(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flight_data_2021.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, mockdata.WriteCSV(f, mockdata.Flights(n, 11)))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.RunConfig.Output = filepath.Join(t.TempDir(), "runs")
	cfg.RunConfig.SaveData = true
	cfg.AWS.BucketName = "flight-artifacts"
	cfg.AWS.Upload = true
	cfg.TrainModel.Features = []string{
		"Wind_Speed_mph", "Wind_Gust_mph", "Visibility_miles", "precip_in",
		"daily_snow_in", "Distance_Final", "dep_time", "Month",
		"Envoy Air", "dept-type_ohe_large_airport",
	}
	cfg.TrainModel.Response = mockdata.Response
	cfg.TrainModel.RF = config.Params{"n_estimators": 5, "max_depth": 4, "random_state": 1}
	cfg.TrainModel.GBM = config.Params{"n_estimators": 10, "random_state": 1}
	cfg.ScoreModel = config.ScoreModel{Features: cfg.TrainModel.Features, Response: mockdata.Response}
	require.NoError(t, cfg.Validate())
	return cfg
}

type harness struct {
	cfg      *config.Config
	store    *storage.Dir
	notifier *mockNotifier
	metrics  *observability.Metrics
}

func newPipeline(t *testing.T, h *harness, source pipeline.Source, store storage.ObjectStore) *pipeline.Pipeline {
	t.Helper()
	clock := clockwork.NewFakeClockAt(runTime)
	logger := discardLogger()
	sink := artifact.NewSink(h.cfg.RunConfig.Output, clock, logger)
	trainer := train.New(h.cfg.TrainModel, logger, h.metrics, train.WithClock(clock))
	return pipeline.New(h.cfg, source, sink, trainer, logger, h.metrics,
		pipeline.WithStore(store),
		pipeline.WithNotifier(h.notifier),
		pipeline.WithClock(clock),
	)
}

func newHarness(t *testing.T) *harness {
	return &harness{
		cfg:      testConfig(t),
		store:    storage.NewDir(t.TempDir()),
		notifier: &mockNotifier{},
		metrics:  observability.NewMetricsForTesting(),
	}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	h := newHarness(t)
	p := newPipeline(t, h, &pipeline.FileSource{Path: writeFlights(t, 200)}, h.store)

	require.Error(t, p.CheckReadiness(context.Background()))

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	t.Run("summary", func(t *testing.T) {
		assert.Equal(t, "1638345600", summary.RunID)
		assert.Equal(t, summary.Rows, summary.TrainRows+summary.TestRows)
		assert.Equal(t, 0, summary.ArtifactErrors)
		assert.Len(t, summary.Metrics, 3)
		for _, f := range model.Families {
			m, ok := summary.Metrics[string(f)]
			require.True(t, ok, f)
			assert.Greater(t, m.RMSE, 0.0)
			assert.GreaterOrEqual(t, m.RMSE, m.MAE)
		}
	})

	t.Run("run directory", func(t *testing.T) {
		want := []string{
			"config.yaml", "data.csv", "gbm_model_object.gob", "metrics_gbm.yaml",
			"metrics_pcr.yaml", "metrics_rf.yaml", "pcr_model_object.gob",
			"rf_model_object.gob", "scores_gbm.csv", "scores_pcr.csv",
			"scores_rf.csv", "test.csv", "train.csv", "vocabulary.yaml",
		}
		entries, err := os.ReadDir(summary.Dir)
		require.NoError(t, err)
		var got []string
		for _, e := range entries {
			got = append(got, e.Name())
		}
		slices.Sort(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("run directory mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("persisted metrics match scores", func(t *testing.T) {
		for _, f := range model.Families {
			pairs, err := artifact.ReadScores(filepath.Join(summary.Dir, artifact.ScoresFile(f)))
			require.NoError(t, err)
			recomputed, err := domain.Evaluate(pairs)
			require.NoError(t, err)
			persisted, err := artifact.ReadMetrics(filepath.Join(summary.Dir, artifact.MetricsFile(f)))
			require.NoError(t, err)
			assert.Equal(t, persisted, recomputed, f)
			assert.Equal(t, summary.Metrics[string(f)], persisted, f)
		}
	})

	t.Run("uploads", func(t *testing.T) {
		assert.Len(t, summary.Uploaded, 14)
		keys, err := h.store.List(context.Background(), "flight-artifacts", "model-artifacts/")
		require.NoError(t, err)
		assert.Contains(t, keys, "model-artifacts/rf_model_object.gob")
	})

	t.Run("notification and metrics", func(t *testing.T) {
		require.Len(t, h.notifier.summaries, 1)
		assert.Equal(t, summary.RunID, h.notifier.summaries[0].RunID)
		assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.RunsCompleted.WithLabelValues("success")))
		assert.Equal(t, 200.0, testutil.ToFloat64(h.metrics.RowsLoaded))
		assert.Equal(t, float64(200-summary.Rows), testutil.ToFloat64(h.metrics.RowsCancelled))
		assert.Equal(t, 14.0, testutil.ToFloat64(h.metrics.ArtifactsUploaded))
		assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.PipelineRunning))
		assert.NoError(t, p.CheckReadiness(context.Background()))
	})
}

func TestPipeline_Run_ObjectSourceXLSX(t *testing.T) {
	h := newHarness(t)
	h.cfg.AWS.Upload = false
	h.cfg.RunConfig.SaveData = false

	var buf bytes.Buffer
	require.NoError(t, mockdata.WriteXLSX(&buf, mockdata.Flights(120, 5)))
	require.NoError(t, h.store.Put(context.Background(), "flight-data", storage.Object{Key: "flights.xlsx", Body: buf.Bytes()}))

	src := &pipeline.ObjectSource{Store: h.store, Bucket: "flight-data", Key: "flights.xlsx"}
	p := newPipeline(t, h, src, h.store)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Uploaded)
	assert.NoFileExists(t, filepath.Join(summary.Dir, "data.csv"))
	assert.FileExists(t, filepath.Join(summary.Dir, "gbm_model_object.gob"))
}

func TestPipeline_Run_UploadFailuresAreCounted(t *testing.T) {
	h := newHarness(t)
	store := &flakyStore{ObjectStore: h.store, suffix: ".gob"}
	p := newPipeline(t, h, &pipeline.FileSource{Path: writeFlights(t, 120)}, store)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ArtifactErrors)
	assert.Len(t, summary.Uploaded, 11)
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.ArtifactErrors))
}

func TestPipeline_Run_NotifierErrorDoesNotFailRun(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("broker down")
	p := newPipeline(t, h, &pipeline.FileSource{Path: writeFlights(t, 120)}, h.store)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.notifier.summaries, 1)
}

func TestPipeline_Run_Aborts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		source func(t *testing.T) pipeline.Source
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing feature column",
			mutate: func(cfg *config.Config) { cfg.TrainModel.Features = append(cfg.TrainModel.Features, "Origin") },
			check: func(t *testing.T, err error) {
				var mc *domain.MissingColumnError
				require.True(t, errors.As(err, &mc))
				assert.Equal(t, "Origin", mc.Column)
			},
		},
		{
			name:   "invalid hyperparameter",
			mutate: func(cfg *config.Config) { cfg.TrainModel.RF = config.Params{"n_estimators": 2.0} },
			check: func(t *testing.T, err error) {
				var he *train.InvalidHyperparameterError
				require.True(t, errors.As(err, &he))
				assert.Equal(t, model.FamilyRF, he.Family)
			},
		},
		{
			name:   "invalid test fraction",
			mutate: func(cfg *config.Config) { cfg.TrainModel.TestSize = 1.5 },
			check: func(t *testing.T, err error) {
				var fe *domain.InvalidFractionError
				require.True(t, errors.As(err, &fe))
			},
		},
		{
			name: "missing input file",
			source: func(t *testing.T) pipeline.Source {
				return &pipeline.FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")}
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.mutate != nil {
				tt.mutate(h.cfg)
				h.cfg.ScoreModel.Features = h.cfg.TrainModel.Features
			}
			var src pipeline.Source = &pipeline.FileSource{Path: writeFlights(t, 60)}
			if tt.source != nil {
				src = tt.source(t)
			}
			p := newPipeline(t, h, src, h.store)

			summary, err := p.Run(context.Background())
			require.Error(t, err)
			tt.check(t, err)

			assert.NotEmpty(t, summary.RunID, "run directory is created before the failure")
			assert.Empty(t, h.notifier.summaries)
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.RunsCompleted.WithLabelValues("error")))
			assert.Error(t, p.CheckReadiness(context.Background()))
		})
	}
}
