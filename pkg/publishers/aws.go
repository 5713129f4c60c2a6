package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves AWS settings for region, preferring static
// credentials when they are configured.
func loadAWSConfig(ctx context.Context, region string, creds *AWSCredentials) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if creds != nil && creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		provider := credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)
		opts = append(opts, awscfg.WithCredentialsProvider(provider))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// awsMessage is the body and string attributes shared by SQS and SNS.
type awsMessage struct {
	body  *string
	attrs map[string]string
	// group and dedupe are set only for FIFO destinations.
	group, dedupe *string
}

func newAWSMessage(evt Event, fifo bool) (awsMessage, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return awsMessage{}, fmt.Errorf("marshal event: %w", err)
	}
	msg := awsMessage{body: aws.String(string(payload)), attrs: map[string]string{}}
	for k, v := range evt.attributes() {
		if v != "" {
			msg.attrs[k] = v
		}
	}
	if fifo {
		msg.group = aws.String(evt.FeedID)
		msg.dedupe = aws.String(evt.ID)
	}
	return msg, nil
}

func isFIFO(name string) bool {
	return strings.HasSuffix(name, ".fifo")
}
