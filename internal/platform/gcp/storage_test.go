package gcp

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

func TestStorageConfigFromEnv(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		emulator string
		want     StorageMode
		wantErr  bool
	}{
		{"default", "", "", StorageModeGCS, false},
		{"emulator implied", "", "http://fake-gcs:4443", StorageModeGCSEmulator, false},
		{"explicit gcs ignores emulator", "gcs", "http://fake-gcs:4443", StorageModeGCS, false},
		{"emulator without host", "gcs_emulator", "", StorageModeGCSEmulator, true},
		{"emulator bad host", "gcs_emulator", "fake-gcs", StorageModeGCSEmulator, true},
		{"unknown", "s3", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
			t.Setenv("STORAGE_EMULATOR_HOST", tc.emulator)
			cfg, err := StorageConfigFromEnv()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("StorageConfigFromEnv: %v", err)
			}
			if cfg.Mode != tc.want {
				t.Fatalf("mode=%q want %q", cfg.Mode, tc.want)
			}
		})
	}
}

func TestExportKeyAndURL(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	key := ExportKey(id, civil.Date{Year: 2026, Month: 3, Day: 9}, "logs", "csv")
	if key != "exports/11111111-2222-3333-4444-555555555555/2026-03-09/logs.csv" {
		t.Fatalf("key=%s", key)
	}
	a := &exportArchive{cfg: StorageConfig{Mode: StorageModeGCS, Bucket: "hw-exports"}}
	if got := a.URL(key); got != "https://storage.googleapis.com/hw-exports/"+key {
		t.Fatalf("url=%s", got)
	}
	if contentTypeForKey(key) != "text/csv" {
		t.Fatalf("content type")
	}
}

func TestNewExportArchiveWithoutBucket(t *testing.T) {
	a, err := NewExportArchive(t.Context(), nil, StorageConfig{Mode: StorageModeGCS})
	if err != nil || a != nil {
		t.Fatalf("got %v err=%v", a, err)
	}
}
