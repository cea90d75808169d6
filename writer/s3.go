package writer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "toaflow/config"
	"toaflow/logger"
)

// Uploader copies finished output files to S3 under date-partitioned keys.
type Uploader struct {
	cfg      appconfig.S3Config
	s3Client *s3.Client
	runID    string
	log      *logger.Log
}

// NewUploader initializes an uploader with AWS credentials from the
// configuration or the default provider chain.
func NewUploader(ctx context.Context, cfg appconfig.S3Config, runID string) (*Uploader, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &Uploader{
		cfg:      cfg,
		s3Client: s3Client,
		runID:    runID,
		log:      logger.GetLogger(),
	}, nil
}

// Upload puts one output file under a date-partitioned key.
func (u *Uploader) Upload(ctx context.Context, filename string, data []byte) error {
	key := u.key(filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if _, err := u.s3Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("upload '%s' to s3: %w", filename, err)
	}

	u.log.WithComponent("s3_writer").WithFields(logger.Fields{
		"s3_key": key,
		"bucket": u.cfg.Bucket,
		"bytes":  len(data),
	}).Info("output uploaded")

	return nil
}

func (u *Uploader) key(filename string) string {
	now := time.Now().UTC()
	parts := []string{
		u.cfg.Prefix,
		fmt.Sprintf("year=%04d", now.Year()),
		fmt.Sprintf("month=%02d", int(now.Month())),
		fmt.Sprintf("day=%02d", now.Day()),
		fmt.Sprintf("run=%s", u.runID),
		filepath.Base(filename),
	}
	if u.cfg.Prefix == "" {
		parts = parts[1:]
	}
	return filepath.ToSlash(filepath.Join(parts...))
}
