// utils/storage_gcs.go - Google Cloud Storage provider
package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGCSClient initializes a Google Cloud Storage client.
// Prefer ADC (GOOGLE_APPLICATION_CREDENTIALS / workload identity).
// If you need to provide explicit JSON (e.g. locally), set
// GCS_CREDENTIALS_JSON.
func getGCSClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func gcsBucket() (string, error) {
	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	return bucket, nil
}

func saveToGCS(ctx context.Context, objectKey string, fh *multipart.FileHeader) (string, error) {
	bucket, err := gcsBucket()
	if err != nil {
		return "", err
	}

	client, err := getGCSClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	wc := client.Bucket(bucket).Object(objectKey).NewWriter(ctx)
	wc.ContentType = fh.Header.Get("Content-Type")

	if _, err := io.Copy(wc, src); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("gs://%s/%s", bucket, objectKey), nil
}

func signGCSDownloadURL(ctx context.Context, uri string, expires time.Duration) (string, error) {
	rest := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("malformed gcs uri %q", uri)
	}
	bucket, objectKey := parts[0], parts[1]

	client, err := getGCSClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return client.Bucket(bucket).SignedURL(objectKey, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expires),
	})
}
