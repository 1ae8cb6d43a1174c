package dataset

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/sportscar-dash/pkg/fn"
)

type fakeGetter struct {
	errs  []error
	body  string
	calls int
	last  *s3.GetObjectInput
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	f.last = in
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

var fastRetry = fn.RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond}

func TestS3Source_Load(t *testing.T) {
	g := &fakeGetter{body: header + "Audi,R8,2020,540,\"150,000\",3.2\n"}
	src := S3Source{Client: g, Bucket: "cars", Key: "2024/sport_car_price.csv", Retry: fastRetry}

	ds, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "cars", *g.last.Bucket)
	assert.Equal(t, "2024/sport_car_price.csv", *g.last.Key)
	assert.Equal(t, "s3://cars/2024/sport_car_price.csv", src.String())
}

func TestS3Source_RetriesTransientErrors(t *testing.T) {
	g := &fakeGetter{
		errs: []error{errors.New("connection reset"), errors.New("503 slow down")},
		body: header,
	}
	rc, err := S3Source{Client: g, Bucket: "b", Key: "k", Retry: fastRetry}.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, 3, g.calls)
}

func TestS3Source_NoSuchKeyIsNotRetried(t *testing.T) {
	g := &fakeGetter{errs: []error{&types.NoSuchKey{}}}
	_, err := S3Source{Client: g, Bucket: "b", Key: "k", Retry: fastRetry}.Open(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, g.calls)
}

func TestSourceFromURI(t *testing.T) {
	src, err := SourceFromURI(context.Background(), "data/sport_car_price.csv", S3Options{})
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "data/sport_car_price.csv"}, src)

	_, err = SourceFromURI(context.Background(), "", S3Options{})
	assert.Error(t, err)

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, err = SourceFromURI(context.Background(), bad, S3Options{})
		assert.Error(t, err, bad)
	}
}

func TestSourceFromURI_S3(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	src, err := SourceFromURI(context.Background(), "s3://cars/sport_car_price.csv", S3Options{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true})
	require.NoError(t, err)
	s3src, ok := src.(S3Source)
	require.True(t, ok)
	assert.Equal(t, "cars", s3src.Bucket)
	assert.Equal(t, "sport_car_price.csv", s3src.Key)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"BMW,M3,2021,470,\"70,000\",3.8\n"), 0o600))

	ds, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, path, FileSource{Path: path}.String())
}
