package eventsource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"

	"github.com/byte4ever/stacktail/stackevent"
)

// DescribeStackEventsAPI is the subset of the
// CloudFormation client used by CloudFormation.
type DescribeStackEventsAPI interface {
	DescribeStackEvents(
		ctx context.Context,
		params *cloudformation.DescribeStackEventsInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DescribeStackEventsOutput, error)
}

// AWSConfig holds the settings needed to build a
// CloudFormation client. Empty fields fall back to the
// AWS SDK default chain (environment, shared config).
type AWSConfig struct {
	// Region overrides the default region.
	Region string
	// Profile selects a shared config profile.
	Profile string
}

// CloudFormation reads stack events through the
// DescribeStackEvents API.
//
// Pattern: Strategy -- implements Source.
type CloudFormation struct {
	api DescribeStackEventsAPI
}

// NewCloudFormation returns a Source backed by api.
func NewCloudFormation(
	api DescribeStackEventsAPI,
) *CloudFormation {
	return &CloudFormation{api: api}
}

// NewCloudFormationFromConfig loads the AWS
// configuration and builds a CloudFormation source. SDK
// level retries are disabled; throttling is handled by
// Retrying.
func NewCloudFormationFromConfig(
	ctx context.Context,
	cfg AWSConfig,
) (*CloudFormation, error) {
	const errCtx = "creating cloudformation source"

	opts := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	}

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		opts = append(
			opts,
			config.WithSharedConfigProfile(cfg.Profile),
		)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: load aws config: %w", errCtx, err,
		)
	}

	return NewCloudFormation(
		cloudformation.NewFromConfig(awsCfg),
	), nil
}

// Fetch returns the first page of events of stackID,
// newest first.
func (c *CloudFormation) Fetch(
	ctx context.Context,
	stackID string,
) ([]stackevent.StackEvent, error) {
	const errCtx = "describing stack events"

	out, err := c.api.DescribeStackEvents(
		ctx,
		&cloudformation.DescribeStackEventsInput{
			StackName: aws.String(stackID),
		},
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %s: %w", errCtx, stackID, classify(err),
		)
	}

	evs := make([]stackevent.StackEvent, 0, len(out.StackEvents))
	for i := range out.StackEvents {
		evs = append(evs, convert(&out.StackEvents[i]))
	}

	return evs, nil
}

//nolint:gochecknoglobals // fixed error code table
var throttleCodes = []string{
	"Throttling",
	"ThrottlingException",
	"RequestLimitExceeded",
	"TooManyRequestsException",
}

// classify maps an SDK error onto the package error
// taxonomy, keeping the original error in the chain.
func classify(err error) error {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}

	code := apiErr.ErrorCode()

	for _, tc := range throttleCodes {
		if code == tc {
			return fmt.Errorf("%w: %w", ErrThrottled, err)
		}
	}

	if code == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist") {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %w", ErrFatal, err)
}

func convert(in *cftypes.StackEvent) stackevent.StackEvent {
	ev := stackevent.StackEvent{
		EventID:            aws.ToString(in.EventId),
		StackName:          aws.ToString(in.StackName),
		StackID:            aws.ToString(in.StackId),
		LogicalResourceID:  aws.ToString(in.LogicalResourceId),
		ResourceType:       aws.ToString(in.ResourceType),
		ResourceStatus:     string(in.ResourceStatus),
		StatusReason:       aws.ToString(in.ResourceStatusReason),
		PhysicalResourceID: aws.ToString(in.PhysicalResourceId),
	}

	if in.Timestamp != nil {
		ev.Timestamp = *in.Timestamp
	}

	return ev
}
