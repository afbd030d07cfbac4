package mirror

import (
	"bytes"
	"context"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// Uploader copies a finished artifact to some other hand-off location.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

type S3Mirror struct {
	client s3iface.S3API
	bucket string
	key    string
}

type Options struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
}

// NewS3Mirror builds a mirror from the default AWS credential chain. Endpoint
// is for S3 compatible stores like localstack or minio.
func NewS3Mirror(opts Options) (*S3Mirror, error) {
	cfg := &aws.Config{
		Region: aws.String(opts.Region),
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new AWS session")
	}
	return WithClient(s3.New(sess), opts.Bucket, opts.Key), nil
}

func WithClient(client s3iface.S3API, bucket string, key string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket, key: key}
}

// Upload overwrites the mirror object, there is no versioning.
func (m *S3Mirror) Upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "could not read artifact for mirroring")
	}

	_, err = m.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("audio/midi"),
	})
	if err != nil {
		return errors.Wrapf(err, "could not put s3://%v/%v", m.bucket, m.key)
	}
	return nil
}
