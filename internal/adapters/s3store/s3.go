// Package s3store mirrors the local image tree into an S3 bucket and presigns
// GET URLs for the read API.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/domain"
)

// KeyPrefix is the object key prefix mirroring the local image root.
const KeyPrefix = "images"

type Store struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	imageRoot  string
	presignTTL time.Duration
}

// New uses static credentials when both keys are given and the default AWS
// credential chain otherwise.
func New(ctx context.Context, region, bucket, accessKeyID, secretAccessKey, imageRoot string, presignTTL time.Duration) (*Store, error) {
	var cfg aws.Config
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		var err error
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
	}
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}
	client := s3.NewFromConfig(cfg)
	return &Store{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     bucket,
		imageRoot:  imageRoot,
		presignTTL: presignTTL,
	}, nil
}

var _ domain.URLSigner = (*Store)(nil)

// Key maps a local image path (as stored in images.image_url) to its object
// key: <root>/3/17/17001.jpg -> images/3/17/17001.jpg.
func (s *Store) Key(localPath string) (string, error) {
	p := filepath.Clean(strings.TrimPrefix(localPath, "./"))
	rel, err := filepath.Rel(filepath.Clean(s.imageRoot), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside image root %s", localPath, s.imageRoot)
	}
	return path.Join(KeyPrefix, filepath.ToSlash(rel)), nil
}

// SignURL presigns a GET for the object backing imagePath. Remote URLs are
// returned as they are.
func (s *Store) SignURL(ctx context.Context, imagePath string) (string, error) {
	if strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://") {
		return imagePath, nil
	}
	key, err := s.Key(imagePath)
	if err != nil {
		return "", err
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Upload puts localPath under its key unless an object already exists there.
func (s *Store) Upload(ctx context.Context, localPath string) (uploaded bool, err error) {
	key, err := s.Key(localPath)
	if err != nil {
		return false, err
	}
	start := time.Now()
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err == nil {
		observability.ObserveExternal("s3", "head", 200, time.Since(start))
		return false, nil
	}
	var nf *types.NotFound
	if !errors.As(err, &nf) {
		observability.ObserveExternal("s3", "head", 0, time.Since(start))
		return false, fmt.Errorf("head %s: %w", key, err)
	}
	observability.ObserveExternal("s3", "head", 404, time.Since(start))

	f, err := os.Open(localPath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	start = time.Now()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		observability.ObserveExternal("s3", "put", 0, time.Since(start))
		return false, fmt.Errorf("put %s: %w", key, err)
	}
	observability.ObserveExternal("s3", "put", 200, time.Since(start))
	return true, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
