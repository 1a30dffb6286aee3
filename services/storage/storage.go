// Package storage keeps uploaded file contents on local disk or in
// DigitalOcean Spaces behind one interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilchouksey/edu-platform-api/config"
)

// Store saves and removes file contents
type Store interface {
	// Put writes r under key and returns its public URL
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision-free key that keeps the original extension,
// e.g. "courses/8c1e...c2.png"
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	key := uuid.NewString() + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// New returns the store selected by FILE_STORAGE
func New(env *config.EnviornmentVariable) (Store, error) {
	switch env.FILE_STORAGE {
	case "", "disk":
		return NewDiskStore(env.UPLOAD_DIR, "/uploads")
	case "spaces":
		return NewSpacesStore(SpacesConfig{
			AccessKey: env.DO_SPACES_KEY,
			SecretKey: env.DO_SPACES_SECRET,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
			CDNURL:    env.DO_SPACES_CDN_URL,
		})
	}
	return nil, fmt.Errorf("unknown FILE_STORAGE %q", env.FILE_STORAGE)
}
