package snapshot

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/vtree/internal/errors"
)

// ContentType is the content type of stored snapshot objects.
const ContentType = "application/vnd.msgpack"

// S3API is the part of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps snapshots as objects named prefix + appID + ".msgpack".
type S3Store struct {
	client S3API
	bucket string
	prefix string
	opts   options
}

// NewS3Store creates a store on bucket using client.
//
// Example usage:
//
//	client := snapshot.NewS3Client("eu-west-1", "")
//	store := snapshot.NewS3Store(client, "my-bucket", "trees/")
func NewS3Store(client S3API, bucket, prefix string, opts ...Option) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		opts:   buildOptions(opts),
	}
}

// NewS3Client creates an S3 client for region. A non-empty endpoint selects
// an S3-compatible service with path-style addressing. Credentials are read
// from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN on
// every request.
func NewS3Client(region, endpoint string) *s3.Client {
	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(ctx context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.Errorf("E222", "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return creds, nil
}

// Key returns the object key for appID.
func (s *S3Store) Key(appID string) string {
	return s.prefix + appID + ".msgpack"
}

// Save uploads snap, replacing any previous snapshot of the same application.
func (s *S3Store) Save(ctx context.Context, snap *Snapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(snap.AppID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType),
		Metadata: map[string]string{
			"app-id": snap.AppID,
		},
	})
	if err != nil {
		return errors.Errorf("E222", "put %s", s.Key(snap.AppID)).Wrap(err)
	}
	return nil
}

// Load downloads the snapshot of appID.
func (s *S3Store) Load(ctx context.Context, appID string) (*Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(appID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if stderrors.As(err, &noKey) {
			return nil, notFound(appID)
		}
		return nil, errors.Errorf("E222", "get %s", s.Key(appID)).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Errorf("E222", "read %s", s.Key(appID)).Wrap(err)
	}
	return Unmarshal(data, s.opts.resolve)
}

// Delete removes the snapshot of appID.
func (s *S3Store) Delete(ctx context.Context, appID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(appID)),
	})
	if err != nil {
		return errors.Errorf("E222", "delete %s", s.Key(appID)).Wrap(err)
	}
	return nil
}

// Close is a no-op.
func (s *S3Store) Close() error { return nil }
