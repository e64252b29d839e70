// Package storage persists report and evidence images. Local disk is the dev
// default; a Cloud Storage bucket backs production deployments.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// storageClient is a singleton Cloud Storage client instance.
var (
	storageClient *gcs.Client
	clientOnce    sync.Once
)

// objectName builds a date-bucketed, collision-free object path. The original
// filename only contributes its extension.
func objectName(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s%s", now.UTC().Format("2006/01/02"), uuid.New().String(), ext)
}

// LocalUploader writes images under a directory on disk and serves them from
// the /uploads route. Meant for development.
type LocalUploader struct {
	BaseDir string
}

func NewLocalUploader(baseDir string) *LocalUploader {
	if baseDir == "" {
		baseDir = "uploads"
	}
	return &LocalUploader{BaseDir: baseDir}
}

func (u *LocalUploader) UploadImage(ctx context.Context, filename string, content []byte) (string, error) {
	name := objectName(filename, time.Now())
	fullPath := filepath.Join(u.BaseDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return "/uploads/" + name, nil
}

// CloudUploader writes images to a Cloud Storage bucket and returns the
// public object URL.
type CloudUploader struct {
	bucket string
}

// InitStorageClient initializes and returns a singleton Cloud Storage client.
func InitStorageClient() (*gcs.Client, error) {
	var err error

	clientOnce.Do(func() {
		// Decode credentials
		encodedCreds := os.Getenv("FIREBASE_CREDENTIALS")
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			log.Fatalf("Failed to decode storage credentials: %v", err)
		}

		opt := option.WithCredentialsJSON(creds)
		storageClient, err = gcs.NewClient(context.Background(), opt)
		if err != nil {
			log.Fatalf("Failed to create storage client: %v", err)
		}
	})

	return storageClient, err
}

func CloseStorageClient() {
	if storageClient != nil {
		storageClient.Close()
	}
}

func NewCloudUploader(bucket string) (*CloudUploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET environment variable not set")
	}
	if _, err := InitStorageClient(); err != nil {
		return nil, err
	}
	return &CloudUploader{bucket: bucket}, nil
}

func (u *CloudUploader) UploadImage(ctx context.Context, filename string, content []byte) (string, error) {
	name := objectName(filename, time.Now())

	w := storageClient.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentTypeFor(filename)
	if _, err := w.Write(content); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", name, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, name), nil
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
