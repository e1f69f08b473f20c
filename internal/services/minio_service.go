package services

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// ObjectStore is the slice of an S3 compatible bucket the import needs:
// reading the dealer spreadsheet export and archiving uploaded files.
type ObjectStore interface {
	Open(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
	Put(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
}

type minioClient struct {
	client *minio.Client
}

func NewMinioObjectStore(endpoint, accessKey, secretKey string, useSSL bool) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}
	return &minioClient{client: client}, nil
}

func (m *minioClient) Open(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s/%s", bucketName, objectName)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, errors.Wrapf(err, "stat %s/%s", bucketName, objectName)
	}
	return obj, nil
}

func (m *minioClient) Put(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	_, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return errors.Wrapf(err, "put %s/%s", bucketName, objectName)
}

func (m *minioClient) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return errors.Wrapf(err, "check bucket %s", bucketName)
	}
	if !found {
		return errors.Wrapf(m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}), "create bucket %s", bucketName)
	}
	return nil
}
