// utils/storage_provider.go - File storage collaborator
//
// The compliance core only needs two things from storage: accept raw
// bytes and hand back a stable URI, and turn a URI into a
// time-limited URL for viewing. Everything else (content inspection,
// retention) is out of scope.
package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"strings"
	"time"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

// GetStorageProvider returns the configured provider, defaulting to
// local disk.
func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		return StorageProviderLocal
	}
	return provider
}

// StoredFile is one uploaded file after the storage collaborator has
// accepted it: a stable URI plus the original filename.
type StoredFile struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// SaveUpload stores one uploaded file under the owner's folder and
// returns its stable URI. The URI scheme identifies the provider
// that holds the bytes (file:// or gs://).
func SaveUpload(ctx context.Context, ownerType string, ownerID int, documentTypeID int, fh *multipart.FileHeader) (StoredFile, error) {
	objectKey := buildObjectKey(ownerType, ownerID, documentTypeID, fh.Filename)

	switch GetStorageProvider() {
	case StorageProviderGCS:
		uri, err := saveToGCS(ctx, objectKey, fh)
		if err != nil {
			return StoredFile{}, err
		}
		return StoredFile{URI: uri, Name: fh.Filename}, nil
	case StorageProviderLocal:
		uri, err := saveToLocalDisk(objectKey, fh)
		if err != nil {
			return StoredFile{}, err
		}
		return StoredFile{URI: uri, Name: fh.Filename}, nil
	default:
		return StoredFile{}, fmt.Errorf("unknown storage provider %q", GetStorageProvider())
	}
}

// SignedDownloadURL turns a stored URI into a time-limited URL the
// browser can fetch directly. Dispatches on the URI scheme, not on
// the configured provider, so records written under a previous
// provider stay viewable.
func SignedDownloadURL(ctx context.Context, uri string, expires time.Duration) (string, error) {
	switch {
	case strings.HasPrefix(uri, "gs://"):
		return signGCSDownloadURL(ctx, uri, expires)
	case strings.HasPrefix(uri, "file://"):
		return signLocalDownloadURL(uri, expires)
	default:
		return "", fmt.Errorf("unknown storage uri scheme in %q", uri)
	}
}
