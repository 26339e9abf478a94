package utils

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedQuery(t *testing.T, uri string, expires time.Duration) url.Values {
	t.Helper()
	signed, err := signLocalDownloadURL(uri, expires)
	require.NoError(t, err)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	return parsed.Query()
}

func TestSignAndVerifyLocalDownload(t *testing.T) {
	t.Setenv("SIGNED_URL_SECRET", "test-secret")
	t.Setenv("UPLOAD_PATH", "/srv/uploads")

	query := signedQuery(t, "file://asset/7/3/abc_report.pdf", 15*time.Minute)

	path, err := VerifyLocalDownload(query.Get("path"), query.Get("exp"), query.Get("sig"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/uploads", "asset", "7", "3", "abc_report.pdf"), path)
}

func TestVerifyLocalDownloadRejectsTamperedSignature(t *testing.T) {
	t.Setenv("SIGNED_URL_SECRET", "test-secret")

	query := signedQuery(t, "file://asset/7/3/abc_report.pdf", 15*time.Minute)

	_, err := VerifyLocalDownload("asset/7/3/other.pdf", query.Get("exp"), query.Get("sig"))
	assert.Error(t, err)

	_, err = VerifyLocalDownload(query.Get("path"), query.Get("exp"), "deadbeef")
	assert.Error(t, err)
}

func TestVerifyLocalDownloadRejectsExpiredLink(t *testing.T) {
	t.Setenv("SIGNED_URL_SECRET", "test-secret")

	query := signedQuery(t, "file://asset/7/3/abc_report.pdf", -time.Minute)

	_, err := VerifyLocalDownload(query.Get("path"), query.Get("exp"), query.Get("sig"))
	assert.ErrorContains(t, err, "expired")
}

func TestVerifyLocalDownloadRejectsTraversal(t *testing.T) {
	t.Setenv("SIGNED_URL_SECRET", "test-secret")

	secret := []byte("test-secret")
	exp := time.Now().Add(time.Minute).Unix()
	expStr := strconv.FormatInt(exp, 10)

	for _, objectKey := range []string{"../etc/passwd", "/etc/passwd"} {
		sig := localSignature(secret, objectKey, exp)
		_, err := VerifyLocalDownload(objectKey, expStr, sig)
		assert.Error(t, err, objectKey)
	}
}

func TestVerifyLocalDownloadRequiresSecret(t *testing.T) {
	t.Setenv("SIGNED_URL_SECRET", "")

	_, err := VerifyLocalDownload("asset/1/1/x.pdf", "123", "abc")
	assert.Error(t, err)
}

func TestBuildObjectKeyStripsPathComponents(t *testing.T) {
	key := buildObjectKey("asset", 7, 3, "../../evil report.pdf")

	assert.True(t, strings.HasPrefix(key, "asset/7/3/"))
	assert.NotContains(t, key, "..")
	assert.True(t, strings.HasSuffix(key, "_evil report.pdf"))
}
