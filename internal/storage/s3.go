package storage

import (
	"bytes"
	"context"
	"mime"
	"path/filepath"
	"strings"
	"time"

	appconfig "example.com/outcry/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps attachments in an S3 bucket
type S3Store struct {
	client  s3API
	presign func(ctx context.Context, bucket, key string) (string, error)
	bucket  string
	prefix  string
	baseURL string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewObjectStore returns an S3Store for the configured bucket, or NotConfigured when none is set
func NewObjectStore(ctx context.Context, cfg appconfig.StorageConfig, logger zerolog.Logger) (ObjectStore, error) {
	if cfg.Bucket == "" {
		return NotConfigured, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg)
	presignClient := s3.NewPresignClient(client)
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}

	store := newS3Store(client, cfg, logger)
	store.presign = func(ctx context.Context, bucket, key string) (string, error) {
		req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(expiry))
		if err != nil {
			return "", err
		}
		return req.URL, nil
	}
	return store, nil
}

func newS3Store(client s3API, cfg appconfig.StorageConfig, logger zerolog.Logger) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *S3Store) Enabled() bool { return true }

func (s *S3Store) Upload(ctx context.Context, ns Namespace, files []File) ([]StoredObject, error) {
	stored := make([]StoredObject, 0, len(files))
	for _, f := range files {
		obj, err := s.put(ctx, ns, f)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("file_name", f.Name).
				Str("entity_type", ns.EntityType).
				Uint("entity_id", ns.EntityID).
				Msg("attachment upload failed")
			continue
		}
		stored = append(stored, obj)
	}
	return stored, nil
}

func (s *S3Store) put(ctx context.Context, ns Namespace, f File) (StoredObject, error) {
	key := ObjectKey(s.prefix, ns, f.Name, s.now())

	contentType := f.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(f.Content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return StoredObject{}, errors.Wrapf(err, "failed to put object %s", key)
	}

	url, err := s.sharedURL(ctx, key)
	if err != nil {
		return StoredObject{}, errors.Wrapf(err, "failed to share object %s", key)
	}

	return StoredObject{FileName: f.Name, StoragePath: key, SharedURL: url}, nil
}

func (s *S3Store) sharedURL(ctx context.Context, key string) (string, error) {
	if s.baseURL != "" {
		return s.baseURL + "/" + key, nil
	}
	if s.presign != nil {
		return s.presign(ctx, s.bucket, key)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, storagePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})
	return errors.Wrapf(err, "failed to delete object %s", storagePath)
}
