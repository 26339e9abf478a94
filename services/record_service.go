// services/record_service.go - Document record store and mutations
//
// The database has no composite-unique constraint on
// (owner_type, owner_id, document_type_id), so every write path
// re-resolves the record by that key before deciding create vs.
// update, and duplicate keys are reported loudly instead of silently
// picking whichever row comes back first.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"compliance-dashboard-api/config"
	"compliance-dashboard-api/models"
	"compliance-dashboard-api/utils"
)

// FetchRecordsForOwners bulk-loads every record for the given owner
// collection in a single query. Callers must never issue per-cell
// queries; the matrix is owners x types and that would be quadratic
// network traffic.
func FetchRecordsForOwners(ownerType string, ownerIDs []int) ([]models.DocumentRecord, error) {
	records := []models.DocumentRecord{}
	if len(ownerIDs) == 0 {
		return records, nil
	}

	err := config.DB.
		Where("owner_type = ? AND owner_id IN ?", ownerType, ownerIDs).
		Order("record_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, utils.TransientError("fetch document records", err)
	}
	return records, nil
}

// BuildRecordIndex builds the composite-key lookup for one fetched
// record set. It is rebuilt from scratch after every fetch, never
// patched incrementally. Duplicate keys are an invariant violation:
// the lowest record_id wins deterministically and the conflict is
// logged.
func BuildRecordIndex(records []models.DocumentRecord) map[string]*models.DocumentRecord {
	index := make(map[string]*models.DocumentRecord, len(records))
	for i := range records {
		record := &records[i]
		key := record.Key()
		existing, ok := index[key]
		if !ok {
			index[key] = record
			continue
		}

		utils.LogInvariantViolation("duplicate document records for key %s: record_id %d and %d",
			key, existing.RecordID, record.RecordID)
		if record.RecordID < existing.RecordID {
			index[key] = record
		}
	}
	return index
}

// findRecordForPair resolves the single record for one matrix cell.
// Returns nil when no record exists.
func findRecordForPair(db *gorm.DB, owner models.OwnerRef, documentTypeID int) (*models.DocumentRecord, error) {
	var rows []models.DocumentRecord
	err := db.
		Where("owner_type = ? AND owner_id = ? AND document_type_id = ?",
			owner.OwnerType, owner.OwnerID, documentTypeID).
		Order("record_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, utils.TransientError("lookup document record", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		utils.LogInvariantViolation("duplicate document records for key %s: keeping record_id %d",
			owner.RecordKey(documentTypeID), rows[0].RecordID)
	}
	return &rows[0], nil
}

// GetRecordByID loads one record for the viewer/download surfaces.
func GetRecordByID(recordID int) (*models.DocumentRecord, error) {
	var record models.DocumentRecord
	if err := config.DB.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, utils.TransientError("lookup document record", err)
	}
	return &record, nil
}

// UploadFiles appends stored files to the cell's record, creating the
// record on first upload. The caller has already pushed the bytes to
// the storage collaborator; a failure here leaves those blobs alone
// and writes nothing to the database.
//
// A supplied expiry date overwrites the existing one; a nil expiry
// preserves it.
func UploadFiles(ctx context.Context, owner models.OwnerRef, documentTypeID int, files []utils.StoredFile, expiryDate *string) (*models.DocumentRecord, error) {
	if len(files) == 0 {
		return nil, utils.ValidationError("no files to upload")
	}
	if expiryDate != nil && !utils.ValidateExpiryDate(*expiryDate) {
		return nil, utils.ValidationError("invalid expiry date %q", *expiryDate)
	}

	unlock, err := lockRecordKey(ctx, owner.RecordKey(documentTypeID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	uris := make([]string, len(files))
	names := make([]string, len(files))
	for i, f := range files {
		uris[i] = f.URI
		names[i] = f.Name
	}

	now := time.Now()
	record, err := findRecordForPair(config.DB, owner, documentTypeID)
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &models.DocumentRecord{
			OwnerType:      owner.OwnerType,
			OwnerID:        owner.OwnerID,
			DocumentTypeID: documentTypeID,
			ExpiryDate:     expiryDate,
			UploadDate:     &now,
		}
		if err := record.SetFiles(uris, names); err != nil {
			return nil, err
		}
		record.LastUpdatedDate = &now
		if err := config.DB.Create(record).Error; err != nil {
			return nil, utils.TransientError("create document record", err)
		}
	} else {
		if err := record.AppendFiles(uris, names); err != nil {
			return nil, err
		}
		if expiryDate != nil {
			record.ExpiryDate = expiryDate
		}
		record.LastUpdatedDate = &now
		if err := config.DB.Save(record).Error; err != nil {
			return nil, utils.TransientError("update document record", err)
		}
	}

	PublishChange(ctx, ChangeEvent{
		Entity:         "document_record",
		OwnerType:      owner.OwnerType,
		OwnerID:        owner.OwnerID,
		DocumentTypeID: documentTypeID,
	})
	return record, nil
}

// RemoveFile removes one file from the cell's record. Removing the
// last file deletes the record itself. A missing record or a uri not
// present in it is a no-op, not an error: the file may have been
// removed concurrently from another surface.
func RemoveFile(ctx context.Context, owner models.OwnerRef, documentTypeID int, fileURI string) (bool, error) {
	unlock, err := lockRecordKey(ctx, owner.RecordKey(documentTypeID))
	if err != nil {
		return false, err
	}
	defer unlock()

	record, err := findRecordForPair(config.DB, owner, documentTypeID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	removed, err := record.RemoveFileByURI(fileURI)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	now := time.Now()
	if record.FileCount() == 0 && !record.IsNotApplicable {
		if err := config.DB.Delete(&models.DocumentRecord{}, record.RecordID).Error; err != nil {
			return false, utils.TransientError("delete document record", err)
		}
	} else {
		record.LastUpdatedDate = &now
		if err := config.DB.Save(record).Error; err != nil {
			return false, utils.TransientError("update document record", err)
		}
	}

	PublishChange(ctx, ChangeEvent{
		Entity:         "document_record",
		OwnerType:      owner.OwnerType,
		OwnerID:        owner.OwnerID,
		DocumentTypeID: documentTypeID,
	})
	return true, nil
}

// ToggleNotApplicable flips the cell's exemption flag.
//
// A cell that still holds files cannot be marked not-applicable,
// that state would contradict itself, and toggling the exemption
// off again deletes the record, because a record with no files and no
// exemption means the same as no record at all.
//
// Returns the record after the toggle, or nil when the toggle deleted
// it.
func ToggleNotApplicable(ctx context.Context, owner models.OwnerRef, documentTypeID int) (*models.DocumentRecord, error) {
	unlock, err := lockRecordKey(ctx, owner.RecordKey(documentTypeID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now()
	record, err := findRecordForPair(config.DB, owner, documentTypeID)
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &models.DocumentRecord{
			OwnerType:       owner.OwnerType,
			OwnerID:         owner.OwnerID,
			DocumentTypeID:  documentTypeID,
			IsNotApplicable: true,
			UploadDate:      &now,
			LastUpdatedDate: &now,
		}
		if err := record.SetFiles([]string{}, []string{}); err != nil {
			return nil, err
		}
		if err := config.DB.Create(record).Error; err != nil {
			return nil, utils.TransientError("create document record", err)
		}
	} else if record.HasFiles() {
		return nil, fmt.Errorf("%w: cell still has %d files", utils.ErrConflict, record.FileCount())
	} else if record.IsNotApplicable {
		if err := config.DB.Delete(&models.DocumentRecord{}, record.RecordID).Error; err != nil {
			return nil, utils.TransientError("delete document record", err)
		}
		record = nil
	} else {
		// legacy empty record left behind by an older remove path
		record.IsNotApplicable = true
		record.LastUpdatedDate = &now
		if err := config.DB.Save(record).Error; err != nil {
			return nil, utils.TransientError("update document record", err)
		}
	}

	PublishChange(ctx, ChangeEvent{
		Entity:         "document_record",
		OwnerType:      owner.OwnerType,
		OwnerID:        owner.OwnerID,
		DocumentTypeID: documentTypeID,
	})
	return record, nil
}

// UpdateRecordMetadata applies a partial metadata patch (currently
// the expiry date) and always stamps last_updated_date. The write
// touches only the patched columns: a full-row save from a snapshot
// read before the lock would clobber a concurrent file append.
func UpdateRecordMetadata(ctx context.Context, recordID int, req models.UpdateDocumentRecordRequest) (*models.DocumentRecord, error) {
	if req.ExpiryDate != nil && !utils.ValidateExpiryDate(*req.ExpiryDate) {
		return nil, utils.ValidationError("invalid expiry date %q", *req.ExpiryDate)
	}

	// pre-lock read only resolves the composite key to lock on
	record, err := GetRecordByID(recordID)
	if err != nil {
		return nil, err
	}

	unlock, err := lockRecordKey(ctx, record.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	// re-load inside the critical section; the record may have
	// changed between key resolution and lock acquisition
	var fresh models.DocumentRecord
	if err := config.DB.First(&fresh, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, utils.TransientError("lookup document record", err)
	}
	record = &fresh

	if req.ClearExpiryDate {
		record.ExpiryDate = nil
	} else if req.ExpiryDate != nil {
		record.ExpiryDate = req.ExpiryDate
	}

	now := time.Now()
	record.LastUpdatedDate = &now
	err = config.DB.Model(&models.DocumentRecord{}).
		Where("record_id = ?", record.RecordID).
		Updates(map[string]interface{}{
			"expiry_date":       record.ExpiryDate,
			"last_updated_date": record.LastUpdatedDate,
		}).Error
	if err != nil {
		return nil, utils.TransientError("update document record", err)
	}

	PublishChange(ctx, ChangeEvent{
		Entity:         "document_record",
		OwnerType:      record.OwnerType,
		OwnerID:        record.OwnerID,
		DocumentTypeID: record.DocumentTypeID,
	})
	return record, nil
}
