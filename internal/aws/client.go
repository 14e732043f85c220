package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	appconfig "iamaudit/internal/config"
	"iamaudit/internal/logging"
)

// NewConfig builds an aws.Config from the explicit credential quadruple in
// Settings. Credentials are injected rather than resolved from the default
// chain: the tool audits whatever account the supplied session belongs to.
func NewConfig(ctx context.Context, settings *appconfig.Settings) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			settings.SessionToken,
		)),
		config.WithRetryMaxAttempts(5),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewAdaptiveMode(func(o *retry.AdaptiveModeOptions) {
				o.StandardOptions = append(o.StandardOptions, func(so *retry.StandardOptions) {
					so.MaxBackoff = 30 * time.Second
				})
			})
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewIAMClient returns an IAM client for the directory authority
func NewIAMClient(cfg aws.Config) *iam.Client {
	return iam.NewFromConfig(cfg)
}

// NewSTSClient returns an STS client used for the credential preflight
func NewSTSClient(cfg aws.Config) *sts.Client {
	return sts.NewFromConfig(cfg)
}

// CallerIdentity verifies the supplied credentials and returns the caller ARN
// and account ID. Failure here is fatal to the whole run.
func CallerIdentity(ctx context.Context, stsClient *sts.Client) (callerARN string, accountID string, err error) {
	start := time.Now()
	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	logging.LogAPICall("sts:GetCallerIdentity", err == nil, time.Since(start), err)
	if err != nil {
		return "", "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	if result == nil || result.Arn == nil || result.Account == nil {
		return "", "", fmt.Errorf("empty caller identity in response")
	}
	return aws.ToString(result.Arn), aws.ToString(result.Account), nil
}
