package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetbot-service/internal/custom_errors"
	"tweetbot-service/internal/infrastructure/logger"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			_, _ = w.Write([]byte("image-bytes"))
		case "/slow.jpg":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(50*time.Millisecond, logger.New("test"))

	t.Run("success", func(t *testing.T) {
		body, err := f.Fetch(context.Background(), srv.URL+"/ok.jpg")
		require.NoError(t, err)
		defer body.Close()
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "image-bytes", string(data))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), srv.URL+"/missing.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), srv.URL+"/slow.jpg")
		assert.Error(t, err)
	})
}

type fakeS3 struct {
	s3iface.S3API
	input *s3.GetObjectInput
	err   error
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("s3-bytes"))}, nil
}

func TestS3Fetcher(t *testing.T) {
	client := &fakeS3{}
	f := NewS3FetcherWithClient(client, logger.New("test"))

	body, err := f.Fetch(context.Background(), "s3://bucket/posts/1/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "s3-bytes", string(data))
	assert.Equal(t, "bucket", aws.StringValue(client.input.Bucket))
	assert.Equal(t, "posts/1/a.jpg", aws.StringValue(client.input.Key))

	_, err = f.Fetch(context.Background(), "s3://bucket/")
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	client := &fakeS3{}
	r := NewRouter().Handle("s3", NewS3FetcherWithClient(client, logger.New("test")))

	_, err := r.Fetch(context.Background(), "S3://bucket/key.jpg")
	assert.NoError(t, err)

	_, err = r.Fetch(context.Background(), "ftp://host/file.jpg")
	assert.ErrorIs(t, err, custom_errors.ErrUnsupportedScheme)
}
