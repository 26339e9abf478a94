package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DocumentRecord is the stored association between one owner and one
// document type. At most one record may exist per
// (owner_type, owner_id, document_type_id) triple; the database has
// no composite unique constraint, so the services enforce the key
// client-side on every write.
//
// FileURIs and FileNames are parallel JSON arrays and must always
// have the same length. A record never persists with zero files
// unless IsNotApplicable is set: "empty" and "absent" are one state,
// represented by the absence of the row.
type DocumentRecord struct {
	RecordID        int        `gorm:"primaryKey;column:record_id" json:"record_id"`
	OwnerType       string     `gorm:"column:owner_type" json:"owner_type"`
	OwnerID         int        `gorm:"column:owner_id" json:"owner_id"`
	DocumentTypeID  int        `gorm:"column:document_type_id" json:"document_type_id"`
	FileURIs        *string    `gorm:"column:file_uris" json:"-"`
	FileNames       *string    `gorm:"column:file_names" json:"-"`
	ExpiryDate      *string    `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	IsNotApplicable bool       `gorm:"column:is_not_applicable" json:"is_not_applicable"`
	UploadDate      *time.Time `gorm:"column:upload_date" json:"upload_date"`
	LastUpdatedDate *time.Time `gorm:"column:last_updated_date" json:"last_updated_date"`
}

// TableName overrides
func (DocumentRecord) TableName() string {
	return "document_records"
}

// OwnerRef returns the owner identity of this record.
func (r *DocumentRecord) OwnerRef() OwnerRef {
	return OwnerRef{OwnerType: r.OwnerType, OwnerID: r.OwnerID}
}

// Key returns the composite lookup key for this record.
func (r *DocumentRecord) Key() string {
	return r.OwnerRef().RecordKey(r.DocumentTypeID)
}

func parseStringList(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return []string{}
	}

	var parsed []string
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		// Fallback for legacy rows stored as comma separated text
		parts := strings.Split(trimmed, ",")
		parsed = make([]string, 0, len(parts))
		for _, part := range parts {
			if p := strings.TrimSpace(part); p != "" {
				parsed = append(parsed, p)
			}
		}
	}
	if parsed == nil {
		parsed = []string{}
	}
	return parsed
}

// FileURIList decodes the stored file_uris column. Order is
// preserved exactly as uploaded.
func (r *DocumentRecord) FileURIList() []string {
	return parseStringList(r.FileURIs)
}

// FileNameList decodes the stored file_names column, parallel to
// FileURIList.
func (r *DocumentRecord) FileNameList() []string {
	return parseStringList(r.FileNames)
}

// FileCount returns the number of stored files.
func (r *DocumentRecord) FileCount() int {
	return len(r.FileURIList())
}

// HasFiles reports whether at least one file has been uploaded.
func (r *DocumentRecord) HasFiles() bool {
	return r.FileCount() > 0
}

// IsSatisfied reports whether this record counts toward the owner's
// completion score.
func (r *DocumentRecord) IsSatisfied() bool {
	return r.HasFiles() || r.IsNotApplicable
}

// SetFiles replaces both file arrays, rejecting misaligned input.
// Removing a URI by value from one array and by a different index
// from the other is the error class this guards against.
func (r *DocumentRecord) SetFiles(uris, names []string) error {
	if len(uris) != len(names) {
		return fmt.Errorf("file list mismatch: %d uris, %d names", len(uris), len(names))
	}

	uriJSON, err := json.Marshal(uris)
	if err != nil {
		return err
	}
	nameJSON, err := json.Marshal(names)
	if err != nil {
		return err
	}

	uriStr := string(uriJSON)
	nameStr := string(nameJSON)
	r.FileURIs = &uriStr
	r.FileNames = &nameStr
	return nil
}

// AppendFiles adds uploads to the end of both arrays, preserving the
// existing order. Never reorders or dedupes.
func (r *DocumentRecord) AppendFiles(uris, names []string) error {
	if len(uris) != len(names) {
		return fmt.Errorf("file list mismatch: %d uris, %d names", len(uris), len(names))
	}
	return r.SetFiles(append(r.FileURIList(), uris...), append(r.FileNameList(), names...))
}

// RemoveFileByURI removes the first occurrence of uri and the name at
// the same index from both arrays. Returns false when the uri is not
// present.
func (r *DocumentRecord) RemoveFileByURI(uri string) (bool, error) {
	uris := r.FileURIList()
	names := r.FileNameList()

	for i, candidate := range uris {
		if candidate != uri {
			continue
		}
		uris = append(uris[:i], uris[i+1:]...)
		if i < len(names) {
			names = append(names[:i], names[i+1:]...)
		}
		return true, r.SetFiles(uris, names)
	}
	return false, nil
}

// ToResponse flattens the record for JSON responses with the file
// arrays decoded.
func (r *DocumentRecord) ToResponse() map[string]interface{} {
	return map[string]interface{}{
		"record_id":         r.RecordID,
		"owner_type":        r.OwnerType,
		"owner_id":          r.OwnerID,
		"document_type_id":  r.DocumentTypeID,
		"file_uris":         r.FileURIList(),
		"file_names":        r.FileNameList(),
		"expiry_date":       r.ExpiryDate,
		"is_not_applicable": r.IsNotApplicable,
		"upload_date":       r.UploadDate,
		"last_updated_date": r.LastUpdatedDate,
	}
}

// UpdateDocumentRecordRequest represents the metadata patch payload.
type UpdateDocumentRecordRequest struct {
	ExpiryDate      *string `json:"expiry_date,omitempty"`
	ClearExpiryDate bool    `json:"clear_expiry_date,omitempty"`
}

// RemoveDocumentFileRequest identifies one file of one matrix cell.
type RemoveDocumentFileRequest struct {
	OwnerType      string `json:"owner_type"`
	OwnerID        int    `json:"owner_id"`
	DocumentTypeID int    `json:"document_type_id"`
	FileURI        string `json:"file_uri"`
}
