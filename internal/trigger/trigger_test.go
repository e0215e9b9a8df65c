package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/ecs"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func s3Event(t *testing.T, bucket string, keys ...string) events.S3Event {
	t.Helper()
	type object struct {
		Key string `json:"key"`
	}
	type record struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object object `json:"object"`
		} `json:"s3"`
	}
	var raw struct {
		Records []record `json:"Records"`
	}
	for _, k := range keys {
		var r record
		r.S3.Bucket.Name = bucket
		r.S3.Object.Key = k
		raw.Records = append(raw.Records, r)
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	var ev events.S3Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestObjectCopier_Handle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewDir(t.TempDir())
	require.NoError(t, store.Put(ctx, "landing", storage.Object{Key: "raw/flight data 2021.csv", Body: []byte("a,b\n")}))
	require.NoError(t, store.Put(ctx, "landing", storage.Object{Key: "raw/flights.xlsx", Body: []byte("PK")}))

	c := NewObjectCopier(store, "pipeline", discardLogger())

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"plus encodes a space", "raw/flight+data+2021.csv", "raw/flight data 2021.csv"},
		{"percent encodes a space", "raw/flight%20data%202021.csv", "raw/flight data 2021.csv"},
		{"plain key", "raw/flights.xlsx", "raw/flights.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Handle(ctx, s3Event(t, "landing", tt.key))
			require.NoError(t, err)

			copied, err := store.Get(ctx, "pipeline", tt.want)
			require.NoError(t, err)
			src, err := store.Get(ctx, "landing", tt.want)
			require.NoError(t, err)
			assert.Equal(t, src.Body, copied.Body)
		})
	}
}

// typedStore reports a fixed content type on every Get.
type typedStore struct {
	storage.ObjectStore
	contentType string
}

func (s *typedStore) Get(ctx context.Context, bucket, key string) (storage.Object, error) {
	obj, err := s.ObjectStore.Get(ctx, bucket, key)
	obj.ContentType = s.contentType
	return obj, err
}

func TestObjectCopier_ReturnsContentType(t *testing.T) {
	ctx := context.Background()
	dir := storage.NewDir(t.TempDir())
	require.NoError(t, dir.Put(ctx, "landing", storage.Object{Key: "a.csv", Body: []byte("x")}))

	c := NewObjectCopier(&typedStore{ObjectStore: dir, contentType: "text/csv"}, "pipeline", discardLogger())
	ct, err := c.Handle(ctx, s3Event(t, "landing", "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", ct)
}

func TestObjectCopier_MissingObject(t *testing.T) {
	ctx := context.Background()
	store := storage.NewDir(t.TempDir())
	require.NoError(t, store.Put(ctx, "landing", storage.Object{Key: "first.csv", Body: []byte("x")}))

	c := NewObjectCopier(store, "pipeline", discardLogger())
	_, err := c.Handle(ctx, s3Event(t, "landing", "first.csv", "missing.csv", "first.csv"))

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "missing.csv")
	assert.Contains(t, err.Error(), "landing")
}

func TestObjectCopier_BadEscape(t *testing.T) {
	c := NewObjectCopier(storage.NewDir(t.TempDir()), "pipeline", discardLogger())
	ev := events.S3Event{Records: []events.S3EventRecord{{}}}
	ev.Records[0].S3.Bucket.Name = "landing"
	ev.Records[0].S3.Object.Key = "bad%zzkey"

	_, err := c.Handle(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode key")
}

type mockRunner struct {
	spec ecs.TaskSpec
	arns []string
	err  error
}

func (m *mockRunner) RunTask(_ context.Context, spec ecs.TaskSpec) ([]string, error) {
	m.spec = spec
	return m.arns, m.err
}

func TestTaskTrigger_Handle(t *testing.T) {
	spec := ecs.TaskSpec{
		Cluster:        "cloud-project-pipeline",
		TaskDefinition: "cloud-project-pipeline-v2",
		Subnets:        []string{"subnet-1"},
		AssignPublicIP: true,
	}
	runner := &mockRunner{arns: []string{"arn:aws:ecs:us-east-2:1:task/abc"}}
	tr := NewTaskTrigger(runner, spec, discardLogger())

	resp, err := tr.Handle(context.Background(), json.RawMessage(`{"source":"aws.events"}`))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `["arn:aws:ecs:us-east-2:1:task/abc"]`, resp.Body)
	assert.Equal(t, spec, runner.spec)
}

func TestTaskTrigger_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("MISSING capacity")}
	tr := NewTaskTrigger(runner, ecs.TaskSpec{Cluster: "c"}, discardLogger())

	_, err := tr.Handle(context.Background(), nil)
	assert.EqualError(t, err, "MISSING capacity")
}
