// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bookshelf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioCovers stores cover images in an S3 compatible bucket.
type MinioCovers struct {
	mc     *minio.Client
	bucket string
}

// MinioConfig locates the bucket holding cover images.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// OpenMinio connects to the configured endpoint and creates the bucket if
// it does not exist.
func OpenMinio(ctx context.Context, cfg MinioConfig) (*MinioCovers, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		err = mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioCovers{mc: mc, bucket: cfg.Bucket}, nil
}

func (c *MinioCovers) PutCover(ctx context.Context, id, contentType string, image []byte) (string, error) {
	key := coverKey(id, contentType)

	_, err := c.mc.PutObject(
		ctx,
		c.bucket,
		key,
		bytes.NewReader(image),
		int64(len(image)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload cover %s: %w", key, err)
	}
	return key, nil
}
