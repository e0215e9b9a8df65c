// Command copy-object is a Lambda handler that copies every object named in
// an S3 event into DESTINATION_BUCKET.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/s3"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/trigger"
)

func main() {
	cfg, err := config.LoadTrigger()
	if err == nil {
		err = cfg.RequireDestination()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	store, err := s3.NewFromRegion(context.Background(), cfg.Region)
	if err != nil {
		logger.Error("failed to create s3 client", "error", err)
		os.Exit(1)
	}

	copier := trigger.NewObjectCopier(store, cfg.DestinationBucket, logger)
	lambda.Start(copier.Handle)
}
