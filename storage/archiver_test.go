package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
)

type recordingUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (u *recordingUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.key, u.contentType, u.body = key, contentType, body
	return &UploadResult{Key: key}, nil
}

func (u *recordingUploader) Delete(ctx context.Context, key string) error { return nil }

func (u *recordingUploader) GetPublicURL(key string) string { return "" }

func TestArchiveSeasonUploadsJSON(t *testing.T) {
	up := &recordingUploader{}
	archiver := NewSeasonArchiver(up)

	key, err := archiver.ArchiveSeason(context.Background(), 3, map[string]int{"season": 3})
	if err != nil {
		t.Fatal(err)
	}
	if key != "seasons/3.json" || up.key != key {
		t.Fatalf("unexpected key %q / %q", key, up.key)
	}
	if up.contentType != "application/json" {
		t.Fatalf("unexpected content type %q", up.contentType)
	}
	var decoded map[string]int
	if err := json.Unmarshal(up.body, &decoded); err != nil || decoded["season"] != 3 {
		t.Fatalf("unexpected body %s (%v)", up.body, err)
	}
}

func TestArchiveSeasonWrapsUploadError(t *testing.T) {
	boom := errors.New("bucket unavailable")
	archiver := NewSeasonArchiver(&recordingUploader{err: boom})
	if _, err := archiver.ArchiveSeason(context.Background(), 1, struct{}{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}

func TestJoinPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "seasons/1.json", "https://cdn.example.com/seasons/1.json"},
		{"https://cdn.example.com/archive/", "/seasons/2.json", "https://cdn.example.com/archive/seasons/2.json"},
		{"https://cdn.example.com/archive", "seasons/2.json", "https://cdn.example.com/archive/seasons/2.json"},
		{"", "seasons/1.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		if got := joinPublicURL(tt.base, tt.key); got != tt.want {
			t.Errorf("joinPublicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestR2ConfigEnabled(t *testing.T) {
	if (CloudflareR2UploaderConfig{}).Enabled() {
		t.Fatal("empty config must be disabled")
	}
	cfg := CloudflareR2UploaderConfig{AccountID: "acc", AccessKeyID: "id", SecretAccessKey: "secret", BucketName: "b"}
	if !cfg.Enabled() {
		t.Fatal("expected enabled config")
	}
}
