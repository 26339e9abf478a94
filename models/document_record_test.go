package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSetFilesRejectsMisalignedArrays(t *testing.T) {
	var r DocumentRecord
	err := r.SetFiles([]string{"file://a", "file://b"}, []string{"a.pdf"})
	require.Error(t, err)
	assert.Nil(t, r.FileURIs)
}

func TestAppendFilesPreservesOrder(t *testing.T) {
	var r DocumentRecord
	require.NoError(t, r.SetFiles([]string{"file://f1"}, []string{"f1.pdf"}))
	require.NoError(t, r.AppendFiles([]string{"file://f2"}, []string{"f2.pdf"}))

	assert.Equal(t, []string{"file://f1", "file://f2"}, r.FileURIList())
	assert.Equal(t, []string{"f1.pdf", "f2.pdf"}, r.FileNameList())
	assert.Equal(t, 2, r.FileCount())
}

func TestRemoveFileByURIKeepsArraysPaired(t *testing.T) {
	var r DocumentRecord
	require.NoError(t, r.SetFiles(
		[]string{"file://a", "file://b", "file://c"},
		[]string{"a.pdf", "b.pdf", "c.pdf"},
	))

	removed, err := r.RemoveFileByURI("file://b")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"file://a", "file://c"}, r.FileURIList())
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, r.FileNameList())
}

func TestRemoveFileByURIMissingURI(t *testing.T) {
	var r DocumentRecord
	require.NoError(t, r.SetFiles([]string{"file://a"}, []string{"a.pdf"}))

	removed, err := r.RemoveFileByURI("file://nope")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, r.FileCount())
}

func TestFileListLegacyCommaFallback(t *testing.T) {
	r := DocumentRecord{
		FileURIs:  strPtr("file://a, file://b"),
		FileNames: strPtr("a.pdf, b.pdf"),
	}
	assert.Equal(t, []string{"file://a", "file://b"}, r.FileURIList())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, r.FileNameList())
}

func TestFileListNilAndEmptyColumns(t *testing.T) {
	var r DocumentRecord
	assert.Empty(t, r.FileURIList())
	assert.False(t, r.HasFiles())

	r.FileURIs = strPtr("  ")
	assert.Empty(t, r.FileURIList())
}

func TestIsSatisfied(t *testing.T) {
	var r DocumentRecord
	assert.False(t, r.IsSatisfied())

	r.IsNotApplicable = true
	assert.True(t, r.IsSatisfied())

	r.IsNotApplicable = false
	require.NoError(t, r.SetFiles([]string{"file://a"}, []string{"a.pdf"}))
	assert.True(t, r.IsSatisfied())
}

func TestRecordKeyShape(t *testing.T) {
	r := DocumentRecord{OwnerType: OwnerTypeAsset, OwnerID: 7, DocumentTypeID: 3}
	assert.Equal(t, "asset:7:3", r.Key())
	assert.Equal(t, r.Key(), r.OwnerRef().RecordKey(3))
}
