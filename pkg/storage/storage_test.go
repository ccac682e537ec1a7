package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nurseryhub/nursery-api/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	mu       sync.Mutex
	failures int
	puts     []string
	bodies   map[string][]byte
	deletes  []string
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, *in.Key)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	body, _ := io.ReadAll(in.Body)
	if f.bodies == nil {
		f.bodies = map[string][]byte{}
	}
	f.bodies[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + *in.Key + "?sig=abc"}, nil
}

func fastRetry() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestUpload_ReturnsObjectURL(t *testing.T) {
	api := &fakeObjectAPI{}
	client := NewClientWithAPI(api, nil, "nursery-docs", "https://storage.example.com/").WithRetryConfig(fastRetry())

	url, err := client.Upload(context.Background(), "children/amina-1a2b3c4d/acte_naissance.pdf", []byte("%PDF"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/nursery-docs/children/amina-1a2b3c4d/acte_naissance.pdf", url)
	assert.Equal(t, []byte("%PDF"), api.bodies["children/amina-1a2b3c4d/acte_naissance.pdf"])
}

func TestUpload_RetriesTransientFailure(t *testing.T) {
	api := &fakeObjectAPI{failures: 1}
	client := NewClientWithAPI(api, nil, "bucket", "").WithRetryConfig(fastRetry())

	url, err := client.Upload(context.Background(), "k.png", []byte{1}, "image/png")

	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/k.png", url)
	assert.Len(t, api.puts, 2)
}

func TestUpload_GivesUpAfterMaxRetries(t *testing.T) {
	api := &fakeObjectAPI{failures: 10}
	cfg := fastRetry()
	cfg.MaxRetries = 1
	client := NewClientWithAPI(api, nil, "bucket", "").WithRetryConfig(cfg)

	_, err := client.Upload(context.Background(), "k.png", []byte{1}, "image/png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload document")
	assert.Len(t, api.puts, 2)
}

func TestDelete(t *testing.T) {
	api := &fakeObjectAPI{}
	client := NewClientWithAPI(api, nil, "bucket", "")

	require.NoError(t, client.Delete(context.Background(), "k.pdf"))
	assert.Equal(t, []string{"k.pdf"}, api.deletes)
}

func TestPresignDownload(t *testing.T) {
	client := NewClientWithAPI(&fakeObjectAPI{}, fakePresigner{}, "bucket", "https://s3.example")

	url, err := client.PresignDownload(context.Background(), "a/b.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/a/b.pdf?sig=abc", url)

	unsigned := NewClientWithAPI(&fakeObjectAPI{}, nil, "bucket", "https://s3.example")
	url, err = unsigned.PresignDownload(context.Background(), "a/b.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example/bucket/a/b.pdf", url)
}

func TestNewClient_RequiresBucket(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestMemoryBucket(t *testing.T) {
	b := NewMemoryBucket()
	ctx := context.Background()

	url, err := b.Upload(ctx, "children/x/carnet_medical.pdf", []byte("pdf"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "memory://children/x/carnet_medical.pdf", url)

	content, ok := b.Object("children/x/carnet_medical.pdf")
	require.True(t, ok)
	assert.Equal(t, []byte("pdf"), content)

	signed, err := b.PresignDownload(ctx, "children/x/carnet_medical.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, url, signed)

	require.NoError(t, b.Delete(ctx, "children/x/carnet_medical.pdf"))
	_, err = b.PresignDownload(ctx, "children/x/carnet_medical.pdf", time.Minute)
	assert.Error(t, err)
}
