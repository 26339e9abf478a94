// services/catalog_service.go - Document type and folder catalog
//
// Catalog operations are thin pass-throughs to the store. The only
// business rule is that names must be non-empty after trimming;
// empty submissions are silently ignored (nil, nil) rather than
// surfaced as errors.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"compliance-dashboard-api/config"
	"compliance-dashboard-api/models"
	"compliance-dashboard-api/utils"
)

// ListDocumentTypes returns the matrix columns in the
// admin-configured order.
func ListDocumentTypes() ([]models.DocumentType, error) {
	types := []models.DocumentType{}
	err := config.DB.
		Where("delete_at IS NULL").
		Order("sort_order ASC, document_type_id ASC").
		Find(&types).Error
	if err != nil {
		return nil, utils.TransientError("fetch document types", err)
	}
	return types, nil
}

// ListDocumentFolders returns the catalog folders in display order.
func ListDocumentFolders() ([]models.DocumentFolder, error) {
	folders := []models.DocumentFolder{}
	err := config.DB.
		Where("delete_at IS NULL").
		Order("sort_order ASC, folder_id ASC").
		Find(&folders).Error
	if err != nil {
		return nil, utils.TransientError("fetch document folders", err)
	}
	return folders, nil
}

func nextSortOrder(model interface{}) (int, error) {
	var max *int
	err := config.DB.Model(model).Where("delete_at IS NULL").
		Select("MAX(sort_order)").Scan(&max).Error
	if err != nil {
		return 0, utils.TransientError("compute sort order", err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// CreateDocumentType adds a matrix column. An empty trimmed name is
// ignored and returns (nil, nil).
func CreateDocumentType(ctx context.Context, req models.CreateDocumentTypeRequest) (*models.DocumentType, error) {
	name := utils.SanitizeInput(req.DocumentTypeName)
	if name == "" {
		return nil, nil
	}

	sortOrder, err := nextSortOrder(&models.DocumentType{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	docType := models.DocumentType{
		DocumentTypeName: name,
		SortOrder:        sortOrder,
		FolderID:         req.FolderID,
		CreateAt:         &now,
		UpdateAt:         &now,
	}
	if err := config.DB.Create(&docType).Error; err != nil {
		return nil, utils.TransientError("create document type", err)
	}

	PublishChange(ctx, ChangeEvent{Entity: "document_type"})
	return &docType, nil
}

// UpdateDocumentType renames a type, moves it between folders or
// re-orders it. An empty trimmed name leaves the current name alone.
func UpdateDocumentType(ctx context.Context, id int, req models.UpdateDocumentTypeRequest) (*models.DocumentType, error) {
	var docType models.DocumentType
	if err := config.DB.Where("delete_at IS NULL").First(&docType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, utils.TransientError("lookup document type", err)
	}

	if req.DocumentTypeName != nil {
		if name := utils.SanitizeInput(*req.DocumentTypeName); name != "" {
			docType.DocumentTypeName = name
		}
	}
	if req.ClearFolder {
		docType.FolderID = nil
	} else if req.FolderID != nil {
		docType.FolderID = req.FolderID
	}
	if req.SortOrder != nil {
		docType.SortOrder = *req.SortOrder
	}

	now := time.Now()
	docType.UpdateAt = &now
	if err := config.DB.Save(&docType).Error; err != nil {
		return nil, utils.TransientError("update document type", err)
	}

	PublishChange(ctx, ChangeEvent{Entity: "document_type"})
	return &docType, nil
}

// DeleteDocumentType removes the column from the matrix immediately.
// Existing document records keep their document_type_id and become
// unreachable through the matrix; they are intentionally not cascade
// deleted.
func DeleteDocumentType(ctx context.Context, id int) error {
	now := time.Now()
	result := config.DB.Model(&models.DocumentType{}).
		Where("document_type_id = ? AND delete_at IS NULL", id).
		Update("delete_at", &now)
	if result.Error != nil {
		return utils.TransientError("delete document type", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrNotFound
	}

	PublishChange(ctx, ChangeEvent{Entity: "document_type"})
	return nil
}

// CreateDocumentFolder adds a catalog folder. An empty trimmed name
// is ignored and returns (nil, nil).
func CreateDocumentFolder(ctx context.Context, req models.CreateDocumentFolderRequest) (*models.DocumentFolder, error) {
	name := utils.SanitizeInput(req.FolderName)
	if name == "" {
		return nil, nil
	}

	sortOrder, err := nextSortOrder(&models.DocumentFolder{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	folder := models.DocumentFolder{
		FolderName: name,
		SortOrder:  sortOrder,
		CreateAt:   &now,
		UpdateAt:   &now,
	}
	if err := config.DB.Create(&folder).Error; err != nil {
		return nil, utils.TransientError("create document folder", err)
	}

	PublishChange(ctx, ChangeEvent{Entity: "document_folder"})
	return &folder, nil
}

// UpdateDocumentFolder renames or re-orders a folder.
func UpdateDocumentFolder(ctx context.Context, id int, req models.UpdateDocumentFolderRequest) (*models.DocumentFolder, error) {
	var folder models.DocumentFolder
	if err := config.DB.Where("delete_at IS NULL").First(&folder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, utils.TransientError("lookup document folder", err)
	}

	if req.FolderName != nil {
		if name := utils.SanitizeInput(*req.FolderName); name != "" {
			folder.FolderName = name
		}
	}
	if req.SortOrder != nil {
		folder.SortOrder = *req.SortOrder
	}

	now := time.Now()
	folder.UpdateAt = &now
	if err := config.DB.Save(&folder).Error; err != nil {
		return nil, utils.TransientError("update document folder", err)
	}

	PublishChange(ctx, ChangeEvent{Entity: "document_folder"})
	return &folder, nil
}

// DeleteDocumentFolder removes a folder and clears folder_id on the
// types that referenced it, so they keep working ungrouped. Types are
// never cascade deleted.
func DeleteDocumentFolder(ctx context.Context, id int) error {
	now := time.Now()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DocumentFolder{}).
			Where("folder_id = ? AND delete_at IS NULL", id).
			Update("delete_at", &now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.ErrNotFound
		}

		return tx.Model(&models.DocumentType{}).
			Where("folder_id = ?", id).
			Update("folder_id", nil).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.ErrNotFound
		}
		return utils.TransientError("delete document folder", err)
	}

	PublishChange(ctx, ChangeEvent{Entity: "document_folder"})
	return nil
}
