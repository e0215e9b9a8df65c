// Package trigger holds the serverless handlers that react to new flight
// data: one copies uploaded objects into the pipeline bucket, the other
// starts the pipeline as a container task.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aws/aws-lambda-go/events"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/ecs"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
)

// ObjectCopier copies every object named in an S3 event into a destination
// bucket under the same key.
type ObjectCopier struct {
	store       storage.ObjectStore
	destination string
	logger      *slog.Logger
}

// NewObjectCopier creates a copier writing to destination.
func NewObjectCopier(store storage.ObjectStore, destination string, logger *slog.Logger) *ObjectCopier {
	return &ObjectCopier{store: store, destination: destination, logger: logger}
}

// Handle copies each record's object and returns the content type of the
// last one copied. The first failure aborts the remaining records.
func (c *ObjectCopier) Handle(ctx context.Context, event events.S3Event) (string, error) {
	var contentType string
	for _, rec := range event.Records {
		bucket := rec.S3.Bucket.Name
		key, err := decodeKey(rec.S3.Object)
		if err != nil {
			return "", fmt.Errorf("decode key %q in bucket %s: %w", rec.S3.Object.Key, bucket, err)
		}

		obj, err := c.store.Get(ctx, bucket, key)
		if err != nil {
			return "", fmt.Errorf("get object %s from bucket %s: %w", key, bucket, err)
		}
		if err := c.store.Put(ctx, c.destination, obj); err != nil {
			return "", fmt.Errorf("copy object %s from bucket %s to %s: %w", key, bucket, c.destination, err)
		}

		c.logger.Info("object copied",
			"source_bucket", bucket,
			"destination_bucket", c.destination,
			"key", key,
			"bytes", len(obj.Body),
			"content_type", obj.ContentType,
		)
		contentType = obj.ContentType
	}
	return contentType, nil
}

func decodeKey(o events.S3Object) (string, error) {
	if o.URLDecodedKey != "" {
		return o.URLDecodedKey, nil
	}
	return url.QueryUnescape(o.Key)
}

// TaskRunner starts a container task.
type TaskRunner interface {
	RunTask(ctx context.Context, spec ecs.TaskSpec) ([]string, error)
}

// Response is the handler result returned to the invoker.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// TaskTrigger runs one pipeline task per invocation.
type TaskTrigger struct {
	runner TaskRunner
	spec   ecs.TaskSpec
	logger *slog.Logger
}

// NewTaskTrigger creates a trigger starting spec on each call.
func NewTaskTrigger(runner TaskRunner, spec ecs.TaskSpec, logger *slog.Logger) *TaskTrigger {
	return &TaskTrigger{runner: runner, spec: spec, logger: logger}
}

// Handle starts the task and returns the task ARNs as a JSON body. The event
// content is only logged.
func (t *TaskTrigger) Handle(ctx context.Context, event json.RawMessage) (Response, error) {
	t.logger.Info("task trigger invoked", "event_bytes", len(event), "cluster", t.spec.Cluster)

	arns, err := t.runner.RunTask(ctx, t.spec)
	if err != nil {
		return Response{}, err
	}
	body, err := json.Marshal(arns)
	if err != nil {
		return Response{}, fmt.Errorf("encode task arns: %w", err)
	}

	t.logger.Info("task started", "task_definition", t.spec.TaskDefinition, "tasks", arns)
	return Response{StatusCode: 200, Body: string(body)}, nil
}
