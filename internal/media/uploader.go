package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"backend-blogapp/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrUpload covers any object-store fault. Retry is the caller's call.
var ErrUpload = errors.New("media upload failed")

// ObjectStore abstracts the bucket so tests can stand in for minio.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg config.Config) (*MinioStore, error) {
	cl, err := minio.New(strings.TrimPrefix(cfg.MinioEndpoint, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{client: cl, bucket: cfg.MinioBucket}, nil
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Uploader writes single blobs to the object store and hands back their
// permanent URL. One put per call, no internal retry.
type Uploader struct {
	store   ObjectStore
	baseURL string
}

func NewUploader(store ObjectStore, baseURL string) *Uploader {
	return &Uploader{store: store, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (u *Uploader) Upload(ctx context.Context, data []byte, contentType, folder string) (Object, error) {
	obj := Object{ID: uuid.NewString()}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		obj.Width = cfg.Width
		obj.Height = cfg.Height
		obj.Format = format
	}

	key := objectKey(folder, obj.ID, obj.Format)
	if err := u.store.Put(ctx, key, contentType, data); err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	obj.URL = u.baseURL + "/" + key
	return obj, nil
}

func objectKey(folder, id, format string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "blog"
	}
	key := folder + "/" + id
	if format != "" {
		key += "." + format
	}
	return key
}
