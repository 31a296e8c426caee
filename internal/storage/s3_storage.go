package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

const presignExpiry = 15 * time.Minute

var allowedImageTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// S3Storage issues presigned upload URLs for brand logos.
type S3Storage struct {
	cfg           config.S3Config
	presignClient *s3.PresignClient
}

// NewS3Storage creates the S3 client from static credentials.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		cfg:           cfg,
		presignClient: s3.NewPresignClient(client),
	}, nil
}

// PresignedUpload holds everything a client needs to upload directly to S3.
type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
}

// PresignLogoUpload returns a presigned PUT URL for a brand logo.
// Keys are random so uploads never collide.
func (s *S3Storage) PresignLogoUpload(ctx context.Context, contentType string) (*PresignedUpload, error) {
	log := logger.Get()

	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	key := fmt.Sprintf("logos/%s%s", uuid.NewString(), ext)

	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{"key": key})
		return nil, err
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	if s.cfg.BaseURL != "" {
		publicURL = strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + key
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		Key:       key,
		PublicURL: publicURL,
	}, nil
}
