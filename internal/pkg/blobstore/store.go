package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

// Options for store initialization
type Options struct {
	URL       string
	User      string
	Key       string
	Bucket    string
	PublicURL string
	Secure    bool
}

// Store saves and loads files from S3 compatible storage
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewStoreFromConfig creates the blob store from the filer config section
func NewStoreFromConfig(ctx context.Context, c *viper.Viper) (*Store, error) {
	if c == nil {
		return nil, fmt.Errorf("no config")
	}
	return NewStore(ctx, Options{URL: c.GetString("filer.url"), User: c.GetString("filer.user"),
		Key: c.GetString("filer.key"), Bucket: c.GetString("filer.bucket"),
		PublicURL: c.GetString("filer.publicURL"), Secure: c.GetBool("filer.https")})
}

// NewStore creates the blob store and makes sure the bucket exists
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("no URL")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("no bucket")
	}
	if opts.PublicURL == "" {
		opts.PublicURL = schemePrefix(opts.Secure) + opts.URL
	}
	cl, err := minio.New(opts.URL, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.User, opts.Key, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("can't init minio client: %w", err)
	}
	res := &Store{client: cl, bucket: opts.Bucket, publicURL: opts.PublicURL}
	exists, err := cl.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("can't check bucket: %w", err)
	}
	if !exists {
		if err := cl.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("can't create bucket '%s': %w", opts.Bucket, err)
		}
		goapp.Log.Info().Str("bucket", opts.Bucket).Msg("created")
	}
	return res, nil
}

// SaveFile stores a file
func (s *Store) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error {
	goapp.Log.Info().Str("name", name).Int64("size", fileSize).Msg("saving file")
	_, err := s.client.PutObject(ctx, s.bucket, name, r, fileSize, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("can't save '%s': %w", name, err)
	}
	return nil
}

// SaveImage stores an image and returns its publicly fetchable URL
func (s *Store) SaveImage(ctx context.Context, name string, r io.Reader, fileSize int64, contentType string) (string, error) {
	goapp.Log.Info().Str("name", name).Int64("size", fileSize).Msg("saving image")
	_, err := s.client.PutObject(ctx, s.bucket, name, r, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("can't save '%s': %w", name, err)
	}
	res, err := url.JoinPath(s.publicURL, s.bucket, name)
	if err != nil {
		return "", fmt.Errorf("can't make URL: %w", err)
	}
	return res, nil
}

// LoadFile loads a file by name
func (s *Store) LoadFile(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("can't load '%s': %w", name, err)
	}
	return obj, nil
}

// Clean removes all objects prefixed by the ID
func (s *Store) Clean(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("no ID")
	}
	for obj := range s.client.ListObjects(ctx, s.bucket,
		minio.ListObjectsOptions{Prefix: id + "/", Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("can't list '%s': %w", id, obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("can't remove '%s': %w", obj.Key, err)
		}
		goapp.Log.Info().Str("name", obj.Key).Msg("removed")
	}
	return nil
}

func schemePrefix(secure bool) string {
	if secure {
		return "https://"
	}
	return "http://"
}
