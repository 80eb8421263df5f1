package html2img

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Compile-time interface checks.
var (
	_ Deliverer    = (*S3Deliverer)(nil)
	_ objectPutter = (*minio.Client)(nil)
)

// ErrS3Config is returned when an S3 deliverer is missing required settings.
var ErrS3Config = errors.New("invalid S3 configuration")

// S3Config locates the bucket artifacts are uploaded to.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Prefix    string
	Secure    bool
}

// Validate checks that endpoint and bucket are set.
func (c S3Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrS3Config)
	}
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrS3Config)
	}
	return nil
}

// objectPutter is the subset of the MinIO client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Deliverer uploads artifacts to S3-compatible storage. Every artifact
// gets its own key prefix so repeated exports named "export.png" never collide.
type S3Deliverer struct {
	client objectPutter
	bucket string
	prefix string
	newID  func() string

	// Uploaded receives the object key of every delivered artifact when set.
	Uploaded func(key string)
}

// NewS3Deliverer connects a MinIO client for cfg.
func NewS3Deliverer(cfg S3Config) (*S3Deliverer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrS3Config, err)
	}
	return newS3Deliverer(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Deliverer(client objectPutter, bucket, prefix string) *S3Deliverer {
	return &S3Deliverer{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		newID:  uuid.NewString,
	}
}

// Key returns the object key for filename under a fresh id.
func (d *S3Deliverer) Key(filename string) string {
	return path.Join(d.prefix, d.newID(), filename)
}

// Deliver uploads a as an attachment-disposition object.
func (d *S3Deliverer) Deliver(ctx context.Context, a *Artifact) error {
	key, err := d.Upload(ctx, a)
	if err != nil {
		return err
	}
	if d.Uploaded != nil {
		d.Uploaded(key)
	}
	return nil
}

// Upload stores a under a fresh key and returns that key.
func (d *S3Deliverer) Upload(ctx context.Context, a *Artifact) (string, error) {
	key := d.Key(a.Filename)
	_, err := d.client.PutObject(ctx, d.bucket, key, bytes.NewReader(a.Data), int64(len(a.Data)), minio.PutObjectOptions{
		ContentType:        a.MIME,
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s/%s: %w", d.bucket, key, err)
	}
	return key, nil
}
