package ecs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

// api is the subset of *awsecs.Client the runner uses.
type api interface {
	RunTask(ctx context.Context, in *awsecs.RunTaskInput, optFns ...func(*awsecs.Options)) (*awsecs.RunTaskOutput, error)
}

// TaskSpec describes the Fargate task to start.
type TaskSpec struct {
	Cluster        string
	TaskDefinition string
	Subnets        []string
	AssignPublicIP bool
}

// Runner starts ECS tasks.
type Runner struct {
	client api
}

// New wraps an existing ECS client.
func New(client *awsecs.Client) *Runner {
	return &Runner{client: client}
}

// NewFromRegion loads the default AWS credential chain for region.
func NewFromRegion(ctx context.Context, region string) (*Runner, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(awsecs.NewFromConfig(cfg)), nil
}

// RunTask starts one Fargate task and returns the ARNs of the started tasks.
// Failures reported by ECS are returned as an error.
func (r *Runner) RunTask(ctx context.Context, spec TaskSpec) ([]string, error) {
	out, err := r.client.RunTask(ctx, buildInput(spec))
	if err != nil {
		return nil, fmt.Errorf("run task %s on %s: %w", spec.TaskDefinition, spec.Cluster, err)
	}
	if len(out.Failures) > 0 {
		reasons := make([]string, 0, len(out.Failures))
		for _, f := range out.Failures {
			reasons = append(reasons, fmt.Sprintf("%s: %s", aws.ToString(f.Arn), aws.ToString(f.Reason)))
		}
		return nil, fmt.Errorf("run task %s on %s: %w", spec.TaskDefinition, spec.Cluster, errors.New(strings.Join(reasons, "; ")))
	}

	arns := make([]string, 0, len(out.Tasks))
	for _, t := range out.Tasks {
		arns = append(arns, aws.ToString(t.TaskArn))
	}
	return arns, nil
}

func buildInput(spec TaskSpec) *awsecs.RunTaskInput {
	assign := types.AssignPublicIpDisabled
	if spec.AssignPublicIP {
		assign = types.AssignPublicIpEnabled
	}
	return &awsecs.RunTaskInput{
		Cluster:        aws.String(spec.Cluster),
		LaunchType:     types.LaunchTypeFargate,
		TaskDefinition: aws.String(spec.TaskDefinition),
		Count:          aws.Int32(1),
		NetworkConfiguration: &types.NetworkConfiguration{
			AwsvpcConfiguration: &types.AwsVpcConfiguration{
				Subnets:        spec.Subnets,
				AssignPublicIp: assign,
			},
		},
	}
}
