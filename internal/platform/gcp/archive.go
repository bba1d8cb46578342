package gcp

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

// ExportArchive stores user exports in one bucket.
type ExportArchive interface {
	Put(ctx context.Context, key string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]string, error)
	URL(key string) string
	Close() error
}

type exportArchive struct {
	log    *logger.Logger
	client *storage.Client
	cfg    StorageConfig
}

// NewExportArchive returns nil, nil when no bucket is configured.
func NewExportArchive(ctx context.Context, log *logger.Logger, cfg StorageConfig) (ExportArchive, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	log = log.With("service", "ExportArchive")
	log.Info("export archive initialized", "mode", cfg.Mode, "bucket", cfg.Bucket, "emulator_host", cfg.EmulatorHost)
	return &exportArchive{log: log, client: client, cfg: cfg}, nil
}

// ExportKey is exports/<user>/<date>/<kind>.<format>.
func ExportKey(userID uuid.UUID, day civil.Date, kind, format string) string {
	return path.Join("exports", userID.String(), day.String(), kind+"."+format)
}

func (a *exportArchive) Put(ctx context.Context, key string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.cfg.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeForKey(key)
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	return nil
}

func (a *exportArchive) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := a.client.Bucket(a.cfg.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
}

func (a *exportArchive) URL(key string) string {
	key = strings.TrimLeft(key, "/")
	if a.cfg.Mode == StorageModeGCSEmulator {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", a.cfg.EmulatorHost, a.cfg.Bucket, strings.ReplaceAll(key, "/", "%2F"))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", a.cfg.Bucket, key)
}

func (a *exportArchive) Close() error { return a.client.Close() }

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
