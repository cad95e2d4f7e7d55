package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("3f1c2a9e-8d4b-4c7a-9e21-5b0f6d8a7c11")
	sentAt := time.Date(2026, 10, 18, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600))

	assert.Equal(t, "emails/2026/10/3f1c2a9e-8d4b-4c7a-9e21-5b0f6d8a7c11.html", ArchiveKey(sentAt, id))
}

func TestCleanKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "emails/2026/10/a.html", want: "emails/2026/10/a.html"},
		{in: "/emails//a.html", want: "emails/a.html"},
		{in: "emails/../a.html", want: "a.html"},
		{in: "", wantErr: true},
		{in: "  ", wantErr: true},
		{in: "../secret", wantErr: true},
		{in: "..", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cleanKey(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()

	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Bucket: "b"}.Enabled())

	cfg := Config{URLExpiry: 30 * 24 * time.Hour}
	cfg.applyDefaults()
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, ACLPrivate, cfg.DefaultACL)
	assert.Equal(t, DefaultURLExpiry, cfg.URLExpiry)
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Bucket: "archive", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)
		require.NotNil(t, s)
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{AccessKey: "ak", SecretKey: "sk"})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Bucket: "archive"})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unknown acl", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Bucket: "archive", AccessKey: "ak", SecretKey: "sk", DefaultACL: "world"})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestS3_URL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("public with cdn", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Bucket: "b", AccessKey: "ak", SecretKey: "sk", DefaultACL: ACLPublicRead, PublicURL: "https://cdn.sunday4k.com/"})
		require.NoError(t, err)

		url, err := s.URL(ctx, "emails/2026/10/x.html")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.sunday4k.com/emails/2026/10/x.html", url)
	})

	t.Run("public path style endpoint", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Bucket: "b", AccessKey: "ak", SecretKey: "sk", DefaultACL: ACLPublicRead, Endpoint: "http://localhost:9000", PathStyle: true})
		require.NoError(t, err)

		url, err := s.URL(ctx, "x.html")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/b/x.html", url)
	})

	t.Run("public aws", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Bucket: "b", AccessKey: "ak", SecretKey: "sk", DefaultACL: ACLPublicRead, Region: "eu-west-1"})
		require.NoError(t, err)

		url, err := s.URL(ctx, "x.html")
		require.NoError(t, err)
		assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/x.html", url)
	})

	t.Run("private presigned", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Bucket: "b", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)

		url, err := s.URL(ctx, "emails/x.html")
		require.NoError(t, err)
		assert.Contains(t, url, "emails/x.html")
		assert.Contains(t, url, "X-Amz-Signature=")
		assert.Contains(t, url, "X-Amz-Expires=604800")
	})

	t.Run("invalid key", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Bucket: "b", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)

		_, err = s.URL(ctx, "")
		require.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestS3_PutValidation(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Bucket: "b", AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "x.html", nil)
	require.ErrorIs(t, err, ErrEmptyFile)

	_, err = s.Put(context.Background(), "../x.html", []byte("x"))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no such key api error", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: ErrNotFound},
		{name: "not found", err: &smithy.GenericAPIError{Code: "NotFound"}, want: ErrNotFound},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, want: ErrAccessDenied},
		{name: "typed no such key", err: &types.NoSuchKey{}, want: ErrNotFound},
		{name: "other", err: errors.New("connection reset"), want: ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapS3Error(tt.err, ErrUploadFailed)
			require.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory("http://localhost:8080/archive")

	info, err := m.Put(ctx, "/emails/a.html", []byte("<p>hi</p>"))
	require.NoError(t, err)
	assert.Equal(t, "emails/a.html", info.Key)
	assert.Equal(t, int64(9), info.Size)
	assert.True(t, strings.HasPrefix(info.ContentType, "text/html"))

	data, err := m.Get(ctx, "emails/a.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))

	url, err := m.URL(ctx, "emails/a.html")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/archive/emails/a.html", url)

	require.NoError(t, m.Delete(ctx, "emails/a.html"))
	_, err = m.Get(ctx, "emails/a.html")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = m.Put(ctx, "b.html", nil)
	require.ErrorIs(t, err, ErrEmptyFile)
}
