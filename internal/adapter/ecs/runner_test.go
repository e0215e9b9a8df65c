package ecs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	input *awsecs.RunTaskInput
	out   *awsecs.RunTaskOutput
	err   error
}

func (f *fakeAPI) RunTask(_ context.Context, in *awsecs.RunTaskInput, _ ...func(*awsecs.Options)) (*awsecs.RunTaskOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

var testSpec = TaskSpec{
	Cluster:        "cloud-project-pipeline",
	TaskDefinition: "cloud-project-pipeline-v2",
	Subnets:        []string{"subnet-a", "subnet-b", "subnet-c"},
	AssignPublicIP: true,
}

func TestRunner_RunTask(t *testing.T) {
	api := &fakeAPI{out: &awsecs.RunTaskOutput{
		Tasks: []types.Task{{TaskArn: aws.String("arn:aws:ecs:us-east-2:1:task/abc")}},
	}}
	r := &Runner{client: api}

	arns, err := r.RunTask(context.Background(), testSpec)
	require.NoError(t, err)
	assert.Equal(t, []string{"arn:aws:ecs:us-east-2:1:task/abc"}, arns)

	in := api.input
	require.NotNil(t, in)
	assert.Equal(t, "cloud-project-pipeline", aws.ToString(in.Cluster))
	assert.Equal(t, "cloud-project-pipeline-v2", aws.ToString(in.TaskDefinition))
	assert.Equal(t, types.LaunchTypeFargate, in.LaunchType)
	assert.Equal(t, int32(1), aws.ToInt32(in.Count))
	assert.Equal(t, []string{"subnet-a", "subnet-b", "subnet-c"}, in.NetworkConfiguration.AwsvpcConfiguration.Subnets)
	assert.Equal(t, types.AssignPublicIpEnabled, in.NetworkConfiguration.AwsvpcConfiguration.AssignPublicIp)
}

func TestRunner_RunTaskErrors(t *testing.T) {
	t.Run("reported failure", func(t *testing.T) {
		api := &fakeAPI{out: &awsecs.RunTaskOutput{
			Failures: []types.Failure{{Arn: aws.String("arn:subnet"), Reason: aws.String("MISSING")}},
		}}
		_, err := (&Runner{client: api}).RunTask(context.Background(), testSpec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MISSING")
	})

	t.Run("api error", func(t *testing.T) {
		boom := errors.New("throttled")
		_, err := (&Runner{client: &fakeAPI{err: boom}}).RunTask(context.Background(), testSpec)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("private subnet", func(t *testing.T) {
		spec := testSpec
		spec.AssignPublicIP = false
		in := buildInput(spec)
		assert.Equal(t, types.AssignPublicIpDisabled, in.NetworkConfiguration.AwsvpcConfiguration.AssignPublicIp)
	})
}
