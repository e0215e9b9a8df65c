// Command run-task is a Lambda handler that starts the pipeline as a Fargate
// task.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/ecs"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/trigger"
)

func main() {
	cfg, err := config.LoadTrigger()
	if err == nil {
		err = cfg.RequireTask()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	runner, err := ecs.NewFromRegion(context.Background(), cfg.Region)
	if err != nil {
		logger.Error("failed to create ecs client", "error", err)
		os.Exit(1)
	}

	spec := ecs.TaskSpec{
		Cluster:        cfg.ECSCluster,
		TaskDefinition: cfg.ECSTaskDefinition,
		Subnets:        cfg.ECSSubnets,
		AssignPublicIP: cfg.AssignPublicIP,
	}
	lambda.Start(trigger.NewTaskTrigger(runner, spec, logger).Handle)
}
