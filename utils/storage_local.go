// utils/storage_local.go - Local disk storage provider
package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

func uploadRoot() string {
	root := os.Getenv("UPLOAD_PATH")
	if root == "" {
		root = "./uploads"
	}
	return root
}

func buildObjectKey(ownerType string, ownerID int, documentTypeID int, filename string) string {
	// uuid prefix keeps repeated uploads of the same filename apart
	safeName := filepath.Base(filename)
	safeName = strings.ReplaceAll(safeName, "..", "")
	return fmt.Sprintf("%s/%d/%d/%s_%s", ownerType, ownerID, documentTypeID, uuid.New().String(), safeName)
}

func saveToLocalDisk(objectKey string, fh *multipart.FileHeader) (string, error) {
	fullPath := filepath.Join(uploadRoot(), filepath.FromSlash(objectKey))

	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(fullPath)
		return "", err
	}

	return "file://" + objectKey, nil
}

func localSigningSecret() ([]byte, error) {
	secret := os.Getenv("SIGNED_URL_SECRET")
	if secret == "" {
		return nil, errors.New("SIGNED_URL_SECRET is required for local storage downloads")
	}
	return []byte(secret), nil
}

func localSignature(secret []byte, objectKey string, exp int64) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s|%d", objectKey, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

// signLocalDownloadURL builds a relative URL served by the public
// files endpoint, authenticated with an HMAC over path and expiry.
func signLocalDownloadURL(uri string, expires time.Duration) (string, error) {
	secret, err := localSigningSecret()
	if err != nil {
		return "", err
	}

	objectKey := strings.TrimPrefix(uri, "file://")
	exp := time.Now().Add(expires).Unix()
	sig := localSignature(secret, objectKey, exp)

	query := url.Values{}
	query.Set("path", objectKey)
	query.Set("exp", strconv.FormatInt(exp, 10))
	query.Set("sig", sig)

	base := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	return base + "/public/files?" + query.Encode(), nil
}

// VerifyLocalDownload checks a signed local download request and
// returns the absolute path to serve.
func VerifyLocalDownload(objectKey, expStr, sig string) (string, error) {
	secret, err := localSigningSecret()
	if err != nil {
		return "", err
	}

	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return "", errors.New("download link expired")
	}

	expected := localSignature(secret, objectKey, exp)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return "", errors.New("invalid download signature")
	}

	cleaned := filepath.Clean(filepath.FromSlash(objectKey))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", errors.New("invalid download path")
	}

	return filepath.Join(uploadRoot(), cleaned), nil
}
