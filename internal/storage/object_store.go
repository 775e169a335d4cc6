package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"artforge/internal/config"
	"artforge/internal/media/sniffer"
)

// ObjectStore keeps artifacts in a single S3-compatible bucket.
type ObjectStore struct {
	client     *minio.Client
	bucket     string
	region     string
	publicBase string
	now        func() time.Time
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	if !strings.HasPrefix(publicBase, "http://") && !strings.HasPrefix(publicBase, "https://") {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, endpoint, cfg.Bucket)
	}

	return &ObjectStore{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		publicBase: publicBase,
		now:        time.Now,
	}, nil
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Save uploads data in a single PUT, so a partial object never becomes visible.
func (s *ObjectStore) Save(ctx context.Context, ownerID string, data []byte) (string, error) {
	filename := NewFilename(ownerID, s.now())
	_, err := s.client.PutObject(ctx, s.bucket, filename, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: sniffer.ContentType(data, "image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object: %v", ErrWriteFailure, err)
	}
	return filename, nil
}

func (s *ObjectStore) Delete(ctx context.Context, filename string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, filename, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("delete object %s: %w", filename, err)
	}
	return nil
}

func (s *ObjectStore) PublicURL(filename string) string {
	return joinURL(s.publicBase, filename)
}

func (s *ObjectStore) List(ctx context.Context) ([]Artifact, error) {
	var artifacts []Artifact
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		artifacts = append(artifacts, Artifact{Name: obj.Key, ModTime: obj.LastModified})
	}
	return artifacts, nil
}
