package config

import (
	"errors"
	"strings"
)

// Trigger holds settings for the serverless handlers, populated from
// environment variables.
type Trigger struct {
	DestinationBucket string
	Region            string
	ECSCluster        string
	ECSTaskDefinition string
	ECSSubnets        []string
	AssignPublicIP    bool
	LogLevel          string
	LogFormat         string
}

// LoadTrigger reads handler configuration from the environment, applying
// defaults where unset.
func LoadTrigger() (*Trigger, error) {
	cfg := &Trigger{
		DestinationBucket: envOrDefault("DESTINATION_BUCKET", ""),
		Region:            envOrDefault("AWS_REGION", "us-east-2"),
		ECSCluster:        envOrDefault("ECS_CLUSTER", "cloud-project-pipeline"),
		ECSTaskDefinition: envOrDefault("ECS_TASK_DEFINITION", "cloud-project-pipeline-v2"),
		ECSSubnets:        parseList(envOrDefault("ECS_SUBNETS", "")),
		AssignPublicIP:    envOrDefault("ECS_ASSIGN_PUBLIC_IP", "true") == "true",
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, errors.New("LOG_FORMAT must be json or text")
	}
	return cfg, nil
}

// RequireDestination validates the settings used by the copy handler.
func (t *Trigger) RequireDestination() error {
	if t.DestinationBucket == "" {
		return errors.New("DESTINATION_BUCKET is required")
	}
	return nil
}

// RequireTask validates the settings used by the task trigger.
func (t *Trigger) RequireTask() error {
	if t.ECSCluster == "" {
		return errors.New("ECS_CLUSTER is required")
	}
	if t.ECSTaskDefinition == "" {
		return errors.New("ECS_TASK_DEFINITION is required")
	}
	if len(t.ECSSubnets) == 0 {
		return errors.New("ECS_SUBNETS is required")
	}
	return nil
}

// parseList splits a comma-separated value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
