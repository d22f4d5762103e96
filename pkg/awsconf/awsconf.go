package awsconf

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

var (
	awsCfg  aws.Config
	awsOnce sync.Once
	awsErr  error
)

// Load carrega a configuração da AWS (env vars, profile, IAM role) uma única vez.
// Só é chamado quando a configuração do emulador aponta para s3://, dynamodb://,
// ${ssm.*} ou ${secret.*}.
func Load(ctx context.Context, region string) (aws.Config, error) {
	awsOnce.Do(func() {
		var opts []func(*config.LoadOptions) error
		if region != "" {
			opts = append(opts, config.WithRegion(region))
		}
		awsCfg, awsErr = config.LoadDefaultConfig(ctx, opts...)
	})
	return awsCfg, awsErr
}
