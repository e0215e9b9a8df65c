package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testSummary() domain.RunSummary {
	return domain.RunSummary{
		RunID:     "1700000000",
		Dir:       "runs/1700000000",
		Rows:      100,
		TrainRows: 80,
		TestRows:  20,
		Metrics: map[string]domain.Metrics{
			"rf": {MAE: 1.5, RMSE: 2, R2: 0.4},
		},
		StartedAt:   time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
		CompletedAt: time.Date(2023, 11, 14, 22, 15, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	summary := testSummary()

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)

	assert.Equal(t, []byte("1700000000"), msg.Key)
	assert.Contains(t, string(msg.Value), `"run_id":"1700000000"`)
	assert.Contains(t, string(msg.Value), `"rmse":2`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("1700000000"), msg.Headers[0].Value)
	assert.Equal(t, "completed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2023-11-14T22:15:00Z"), msg.Headers[1].Value)

	var decoded domain.RunSummary
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, summary.Metrics, decoded.Metrics)
}

func TestWriter_Notify(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("publishes one message", func(t *testing.T) {
		fw := &fakeWriter{}
		w := &Writer{writer: fw, logger: logger}

		require.NoError(t, w.Notify(context.Background(), testSummary()))
		require.Len(t, fw.msgs, 1)
		assert.Equal(t, []byte("1700000000"), fw.msgs[0].Key)

		require.NoError(t, w.Close())
		assert.True(t, fw.closed)
	})

	t.Run("wraps broker errors", func(t *testing.T) {
		boom := errors.New("leader not available")
		w := &Writer{writer: &fakeWriter{err: boom}, logger: logger}

		err := w.Notify(context.Background(), testSummary())
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "1700000000")
	})
}
