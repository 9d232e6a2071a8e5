package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
)

// ObjectStore holds off-machine copies of the database.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store uses the default AWS credential chain, or the named shared
// config profile when profile is set.
func NewS3Store(ctx context.Context, bucket, profile string) (*S3Store, error) {
	if bucket == "" {
		return nil, apperrors.Invalid("bucket", "an S3 bucket is required")
	}
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: body})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	res, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, apperrors.NotFound("remote backup", fmt.Sprintf("s3://%s/%s", s.bucket, key))
		}
		return nil, fmt.Errorf("downloading s3://%s/%s: %w", s.bucket, key, err)
	}
	return res.Body, nil
}

// Push takes a fresh backup and uploads it under key. Returns the local
// backup path.
func (m *Manager) Push(ctx context.Context, store ObjectStore, key string) (string, error) {
	path, err := m.Create()
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := store.Put(ctx, key, f); err != nil {
		return "", err
	}
	logger.Info("Pushed backup", "path", path, "key", key)
	return path, nil
}

// Pull downloads the object at key and restores it like a local backup.
// The download is verified before the database is touched. Returns the
// backup of the database that was replaced.
func (m *Manager) Pull(ctx context.Context, store ObjectStore, key string) (string, error) {
	body, err := store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	tmp, err := os.CreateTemp(m.backupDir, "pull-*.db")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("downloading %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	previous, err := m.Restore(tmp.Name())
	if err != nil {
		return "", err
	}
	logger.Info("Pulled backup", "key", key, "dir", filepath.Dir(tmp.Name()))
	return previous, nil
}
