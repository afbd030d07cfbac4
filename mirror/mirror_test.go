package mirror

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
)

type fakeS3 struct {
	s3iface.S3API
	bucket string
	key    string
	body   []byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *in.Bucket
	f.key = *in.Key
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadPutsFileContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.mid")
	os.WriteFile(path, []byte("MThd..."), 0666)

	fake := &fakeS3{}
	m := WithClient(fake, "bucket", "my_recording.mid")

	assert := assert.New(t)
	assert.NoError(m.Upload(context.Background(), path))
	assert.Equal("bucket", fake.bucket)
	assert.Equal("my_recording.mid", fake.key)
	assert.Equal([]byte("MThd..."), fake.body)
}

func TestUploadErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.mid")

	m := WithClient(&fakeS3{}, "bucket", "key")
	assert.Error(t, m.Upload(context.Background(), path))

	os.WriteFile(path, []byte("x"), 0666)
	m = WithClient(&fakeS3{err: errors.New("unreachable")}, "bucket", "key")
	assert.Error(t, m.Upload(context.Background(), path))
}
