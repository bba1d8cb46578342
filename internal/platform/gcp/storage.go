package gcp

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

// StorageConfig selects real GCS or a fake-gcs emulator. An empty
// OBJECT_STORAGE_MODE with STORAGE_EMULATOR_HOST set implies the emulator.
type StorageConfig struct {
	Mode         StorageMode
	EmulatorHost string
	Bucket       string
}

func StorageConfigFromEnv() (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost: strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/"),
		Bucket:       strings.TrimSpace(os.Getenv("EXPORT_BUCKET")),
	}
	raw := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE"))
	switch StorageMode(strings.ToLower(raw)) {
	case "":
		cfg.Mode = StorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeGCSEmulator
		}
	case StorageModeGCS:
		cfg.Mode = StorageModeGCS
	case StorageModeGCSEmulator:
		cfg.Mode = StorageModeGCSEmulator
	default:
		return cfg, fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", raw, StorageModeGCS, StorageModeGCSEmulator)
	}
	return cfg, cfg.Validate()
}

func (c StorageConfig) Validate() error {
	if c.Mode != StorageModeGCSEmulator {
		return nil
	}
	if c.EmulatorHost == "" {
		return fmt.Errorf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", StorageModeGCSEmulator)
	}
	u, err := url.Parse(c.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", c.EmulatorHost)
	}
	return nil
}

func newStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	if cfg.Mode == StorageModeGCSEmulator {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(clientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

// clientOptionsFromEnv accepts inline JSON or a file path.
func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
