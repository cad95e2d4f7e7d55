package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage stores rendered email bodies.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, opts ...Option) (*FileInfo, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// URL returns a public URL for public objects and a presigned one otherwise.
	URL(ctx context.Context, key string) (string, error)
}

// Config holds S3-compatible storage settings. An empty bucket disables archiving.
type Config struct {
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	// Endpoint points at MinIO, R2 or another S3-compatible service.
	Endpoint string `env:"S3_ENDPOINT"`
	Region   string `env:"S3_REGION" envDefault:"us-east-1"`
	// PublicURL is a CDN prefix used instead of the bucket URL for public objects.
	PublicURL  string        `env:"S3_PUBLIC_URL"`
	DefaultACL ACL           `env:"S3_DEFAULT_ACL" envDefault:"private"`
	URLExpiry  time.Duration `env:"S3_URL_EXPIRY" envDefault:"168h"`
	PathStyle  bool          `env:"S3_PATH_STYLE" envDefault:"false"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// FileInfo describes a stored object.
type FileInfo struct {
	Key         string
	ContentType string
	ACL         ACL
	Size        int64
}

// ACL represents access control levels for stored files.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

const (
	DefaultRegion    = "us-east-1"
	DefaultURLExpiry = 7 * 24 * time.Hour
	// S3 presigned URLs cannot outlive seven days.
	maxURLExpiry = 7 * 24 * time.Hour
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPrivate
	}
	if c.URLExpiry <= 0 || c.URLExpiry > maxURLExpiry {
		c.URLExpiry = DefaultURLExpiry
	}
}

func (c *Config) validate() error {
	switch {
	case c.Bucket == "":
		return fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	case c.AccessKey == "" || c.SecretKey == "":
		return fmt.Errorf("%w: access and secret keys are required", ErrInvalidConfig)
	case c.DefaultACL != ACLPrivate && c.DefaultACL != ACLPublicRead:
		return fmt.Errorf("%w: unknown acl %q", ErrInvalidConfig, c.DefaultACL)
	}
	return nil
}

// ArchiveKey returns the key of an archived email body: emails/YYYY/MM/<id>.html.
func ArchiveKey(sentAt time.Time, id uuid.UUID) string {
	return path.Join("emails", sentAt.UTC().Format("2006/01"), id.String()+".html")
}

// cleanKey rejects empty keys and keys escaping the bucket root.
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
