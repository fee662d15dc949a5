package blobStore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rchavali/ClearanceAPI/internal/data/redisStore"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

// Store keeps the raw uploaded bytes so a failed ingestion can always be
// retried from the original file.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// GenerateKey builds a stable storage key. The classification level leads the
// path so operators can reason about blob placement at a glance.
func GenerateKey(level docModel.Level, title string, ext string) string {
	now := time.Now().UTC()
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, title)
	if len(safe) > 40 {
		safe = safe[:40]
	}
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s_%s%s", level, now.Year(), now.Month(), now.Day(), safe, uuid.NewString(), ext)
}

type RedisBlobStore struct {
	store *redisStore.Store
}

func NewRedisBlobStore(store *redisStore.Store) *RedisBlobStore {
	return &RedisBlobStore{store: store}
}

func (b *RedisBlobStore) Put(ctx context.Context, key string, data []byte) error {
	// blobs never expire, retries depend on them
	return b.store.Set(ctx, key, data, 0)
}

func (b *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.store.GetBytes(ctx, key)
	if err != nil {
		if b.store.IsNil(err) {
			return nil, fmt.Errorf("blob %s not found", key)
		}
		return nil, err
	}
	return data, nil
}

func (b *RedisBlobStore) Delete(ctx context.Context, key string) error {
	return b.store.Del(ctx, key)
}

// DiskBlobStore is the fallback when no Redis is reachable, it keeps blobs
// under a base directory using the same key layout.
type DiskBlobStore struct {
	baseDir string
	logger  *logger_i.Logger
}

func NewDiskBlobStore(baseDir string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, err
	}
	return &DiskBlobStore{baseDir: baseDir, logger: logger_i.NewLogger("disk_blob_store")}, nil
}

func (b *DiskBlobStore) path(key string) string {
	return filepath.Join(b.baseDir, filepath.FromSlash(key))
}

func (b *DiskBlobStore) Put(ctx context.Context, key string, data []byte) error {
	p := b.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o640)
}

func (b *DiskBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(b.path(key))
}

func (b *DiskBlobStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
