package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"pulse/pulse/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AvatarStore keeps profile pictures in a MinIO bucket and hands back
// a public URL to store on the user row.
type AvatarStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewAvatarStore(cfg config.Config) (*AvatarStore, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}

	// Create bucket if not exists
	exists, err := client.BucketExists(context.Background(), cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &AvatarStore{
		client:    client,
		bucket:    cfg.MinIOBucket,
		publicURL: strings.TrimRight(cfg.MinIOPublicURL, "/"),
	}, nil
}

func (s *AvatarStore) Upload(ctx context.Context, userID int, filename, contentType string, body io.Reader, size int64) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, key, body, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}
