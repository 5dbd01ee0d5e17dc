package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"ndara/internal/config"
	"ndara/internal/utils/logger"
)

// Ensure S3Service can back lecture assets
var _ BlobStore = (*S3Service)(nil)

type S3Service struct {
	client     *s3.Client
	bucketName string
	endpoint   string
	region     string
	publicRead bool
	logger     *logger.Logger
}

func NewS3Service(ctx context.Context, storage config.StorageConfig) (*S3Service, error) {
	log := logger.New("s3_service")
	cfg := storage.S3

	// Validate required credentials
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty ❌", fmt.Errorf("S3_ACCESS_KEY or S3_SECRET_KEY is empty"))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRetryMode(aws.RetryModeStandard),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config ❌", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", cfg.Endpoint))
			o.UsePathStyle = true
		}
	})

	// Verify credentials by making a test API call
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		return nil, log.Error("Failed to verify S3 bucket %s ❌", err, cfg.BucketName)
	}

	log.Success("S3 service initialized for bucket %s ✅", cfg.BucketName)

	return &S3Service{
		client:     client,
		bucketName: cfg.BucketName,
		endpoint:   cfg.Endpoint,
		region:     cfg.Region,
		publicRead: storage.Provider == "r2",
		logger:     log,
	}, nil
}

// AssetKey builds the storage key of an uploaded lecture asset
func AssetKey(courseID, lectureID, filename string) string {
	return fmt.Sprintf("courses/%s/lectures/%s/%s%s", courseID, lectureID, uuid.New().String(), filepath.Ext(filename))
}

// UploadFile stores file under key and returns its public URL
func (s *S3Service) UploadFile(ctx context.Context, file []byte, key string, contentType string) (string, error) {
	s.logger.Info("📤 Starting file upload: %s", key)

	acl := types.ObjectCannedACLPrivate
	if s.publicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ACL:         acl,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", s.logger.Error("Failed to upload file to storage ❌", err)
	}

	var url string
	if s.endpoint != "" {
		url = fmt.Sprintf("https://%s/%s/%s", s.endpoint, s.bucketName, key)
	} else {
		url = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
	}

	s.logger.Success("✅ File uploaded successfully: %s", url)
	return url, nil
}

// GetSignedURL returns a time-limited download URL for a private asset
func (s *S3Service) GetSignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", s.logger.Error("Failed to generate pre-signed URL ❌", err)
	}
	return presignedURL.URL, nil
}

// DeleteFile removes an asset. Deleting a missing key succeeds.
func (s *S3Service) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.logger.Error("Failed to delete %s ❌", err, key)
	}
	s.logger.Info("🗑️ Deleted asset %s", key)
	return nil
}
