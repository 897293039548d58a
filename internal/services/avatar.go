package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mini-twitter/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const avatarURLExpiry = 5 * time.Minute

var (
	// ErrUnsupportedImage is returned for content types other than the
	// accepted image formats
	ErrUnsupportedImage = errors.New("unsupported image type")
	// ErrInvalidAvatarKey is returned when a confirmed key was not issued
	// to the user
	ErrInvalidAvatarKey = errors.New("invalid avatar key")
	// ErrAvatarNotUploaded is returned when the object behind a key is missing
	ErrAvatarNotUploaded = errors.New("avatar has not been uploaded")
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Presigner signs S3 PUT requests
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectHeader reads S3 object metadata
type ObjectHeader interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// AvatarService hands out pre-signed upload URLs for profile pictures.
// The profile only points at an object once ConfirmUpload has seen it.
type AvatarService struct {
	presigner Presigner
	objects   ObjectHeader
	userRepo  UserStore
	s3Bucket  string
	baseURL   string
}

// NewAvatarService creates an avatar service backed by S3. A custom
// endpoint selects path-style addressing for S3-compatible stores.
func NewAvatarService(ctx context.Context, cfg config.AWSConfig, userRepo UserStore) (*AvatarService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.S3Bucket
	}

	return NewAvatarServiceWithClients(s3.NewPresignClient(s3Client), s3Client, userRepo, cfg.S3Bucket, baseURL), nil
}

// NewAvatarServiceWithClients creates an avatar service that signs with
// presigner, checks uploads with objects and publishes them under baseURL
func NewAvatarServiceWithClients(presigner Presigner, objects ObjectHeader, userRepo UserStore, bucket, baseURL string) *AvatarService {
	return &AvatarService{
		presigner: presigner,
		objects:   objects,
		userRepo:  userRepo,
		s3Bucket:  bucket,
		baseURL:   baseURL,
	}
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	AvatarURL string `json:"avatar_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// GetUploadURL generates a pre-signed URL for uploading an avatar. The
// returned key is passed to ConfirmUpload once the PUT has succeeded.
func (s *AvatarService) GetUploadURL(ctx context.Context, userID, contentType string) (*UploadResponse, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	// Generate S3 key: avatars/{user_id}/{uuid}.{ext}
	s3Key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.New().String(), ext)

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(s3Key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = avatarURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	log.Info().Str("user_id", userID).Str("key", s3Key).Msg("Avatar upload URL issued")

	return &UploadResponse{
		UploadURL: request.URL,
		AvatarURL: s.baseURL + "/" + s3Key,
		Key:       s3Key,
		ExpiresIn: int(avatarURLExpiry.Seconds()),
	}, nil
}

// ConfirmUpload points the user's profile at an uploaded avatar and
// returns its public URL
func (s *AvatarService) ConfirmUpload(ctx context.Context, userID, key string) (string, error) {
	prefix := "avatars/" + userID + "/"
	name, ok := strings.CutPrefix(key, prefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", ErrInvalidAvatarKey
	}

	_, err := s.objects.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.s3Bucket),
		Key:    aws.String(key),
	})
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return "", ErrAvatarNotUploaded
	}
	if err != nil {
		return "", fmt.Errorf("failed to check avatar object: %w", err)
	}

	avatarURL := s.baseURL + "/" + key
	if err := s.userRepo.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		return "", fmt.Errorf("failed to save avatar URL: %w", err)
	}

	log.Info().Str("user_id", userID).Str("key", key).Msg("Avatar confirmed")
	return avatarURL, nil
}
