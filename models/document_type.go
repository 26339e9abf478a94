package models

import (
	"time"
)

// DocumentFolder groups document types in the catalog. Purely
// organizational: deleting a folder never touches the records, and
// types that referenced it get their folder_id cleared.
type DocumentFolder struct {
	FolderID   int        `gorm:"primaryKey;column:folder_id" json:"folder_id"`
	FolderName string     `gorm:"column:folder_name" json:"folder_name"`
	SortOrder  int        `gorm:"column:sort_order" json:"sort_order"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// DocumentType defines one column of the compliance matrix.
type DocumentType struct {
	DocumentTypeID   int        `gorm:"primaryKey;column:document_type_id" json:"document_type_id"`
	DocumentTypeName string     `gorm:"column:document_type_name" json:"document_type_name"`
	SortOrder        int        `gorm:"column:sort_order" json:"sort_order"`
	FolderID         *int       `gorm:"column:folder_id" json:"folder_id,omitempty"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Folder *DocumentFolder `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
}

// TableName overrides
func (DocumentFolder) TableName() string {
	return "document_folders"
}

func (DocumentType) TableName() string {
	return "document_types"
}

// CreateDocumentTypeRequest represents the admin create payload
type CreateDocumentTypeRequest struct {
	DocumentTypeName string `json:"document_type_name"`
	FolderID         *int   `json:"folder_id,omitempty"`
}

// UpdateDocumentTypeRequest represents the admin update payload.
// FolderID uses ClearFolder rather than a null sentinel so "leave
// unchanged" and "unset" stay distinguishable.
type UpdateDocumentTypeRequest struct {
	DocumentTypeName *string `json:"document_type_name,omitempty"`
	FolderID         *int    `json:"folder_id,omitempty"`
	ClearFolder      bool    `json:"clear_folder,omitempty"`
	SortOrder        *int    `json:"sort_order,omitempty"`
}

// CreateDocumentFolderRequest represents the admin create payload
type CreateDocumentFolderRequest struct {
	FolderName string `json:"folder_name"`
}

// UpdateDocumentFolderRequest represents the admin update payload
type UpdateDocumentFolderRequest struct {
	FolderName *string `json:"folder_name,omitempty"`
	SortOrder  *int    `json:"sort_order,omitempty"`
}
