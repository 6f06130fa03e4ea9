package s3

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/photostore"
)

// memBucket is an in-memory objectAPI.
type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	puts    int
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memBucket) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *memBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.objects[*in.Key] = data
	m.types[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(m.types[*in.Key]),
	}, nil
}

func (m *memBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3PhotoStoreSaveGetDelete(t *testing.T) {
	bucket := newMemBucket()
	store := &S3PhotoStore{client: bucket, bucket: "photos", prefix: "items/"}
	ctx := context.Background()

	key, err := store.Save(ctx, "image/gif", []byte("GIF89a"))
	require.NoError(t, err)
	assert.Contains(t, bucket.objects, "items/"+key)

	again, err := store.Save(ctx, "image/gif", []byte("GIF89a"))
	require.NoError(t, err)
	assert.Equal(t, key, again)
	assert.Equal(t, 1, bucket.puts)

	rc, mimeType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/gif", mimeType)

	require.NoError(t, store.Delete(ctx, key))
	_, _, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, photostore.ErrNotFound)
}

func TestS3PhotoStoreRejectsForeignKeys(t *testing.T) {
	store := &S3PhotoStore{client: newMemBucket(), bucket: "photos"}

	_, _, err := store.Get(context.Background(), "../secrets.txt")
	assert.Error(t, err)
	assert.Error(t, store.Delete(context.Background(), "secrets.txt"))
}

func TestNewS3PhotoStoreRequiresBucket(t *testing.T) {
	_, err := NewS3PhotoStore(context.Background(), Config{Region: "us-east-1"})
	assert.EqualError(t, err, "s3 bucket is required")
}
