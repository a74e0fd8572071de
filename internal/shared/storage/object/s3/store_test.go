package s3

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(opts Options) *Store {
	client := s3.New(s3.Options{
		Region: "eu-central-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDTEST", SecretAccessKey: "secret"}, nil
		}),
	})
	return newStore(client, opts)
}

func TestJoinKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "users/u1/applications/a1/payment.pdf", want: "users/u1/applications/a1/payment.pdf"},
		{name: "simple prefix", prefix: "hippo", key: "regions/bel.png", want: "hippo/regions/bel.png"},
		{name: "slashes trimmed", prefix: "/hippo/", key: "/regions/bel.png", want: "hippo/regions/bel.png"},
		{name: "nested prefix", prefix: "hippo/2026", key: "regions/bel.png", want: "hippo/2026/regions/bel.png"},
		{name: "empty key", prefix: "hippo", key: "", want: "hippo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, joinKey(tt.prefix, tt.key))
		})
	}
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{Region: "eu-central-1"})
	require.Error(t, err)
}

func TestPutInputEncryption(t *testing.T) {
	aes := testStore(Options{Bucket: "hippo-docs"}).putInput("k", "image/png", strings.NewReader("x"))
	assert.Equal(t, s3types.ServerSideEncryptionAes256, aes.ServerSideEncryption)
	assert.Nil(t, aes.SSEKMSKeyId)
	assert.Equal(t, "private, no-store", aws.ToString(aes.CacheControl))

	kms := testStore(Options{Bucket: "hippo-docs", KMSKeyID: " alias/hippo "}).putInput("k", "application/pdf", strings.NewReader("x"))
	assert.Equal(t, s3types.ServerSideEncryptionAwsKms, kms.ServerSideEncryption)
	assert.Equal(t, "alias/hippo", aws.ToString(kms.SSEKMSKeyId))
	assert.Equal(t, "application/pdf", aws.ToString(kms.ContentType))
}

func TestSignedURLPresignsWithPrefix(t *testing.T) {
	store := testStore(Options{Bucket: "hippo-docs", Prefix: "/prod/"})

	url, err := store.SignedURL(context.Background(), "users/u1/applications/a1/payment.pdf", 60*time.Second)
	require.NoError(t, err)
	assert.Contains(t, url, "hippo-docs")
	assert.Contains(t, url, "prod/users/u1/applications/a1/payment.pdf")
	assert.Contains(t, url, "response-content-disposition=inline")
	assert.Contains(t, url, "X-Amz-Expires=60")

	_, err = store.SignedURL(context.Background(), "../x", time.Minute)
	assert.Error(t, err)
}
