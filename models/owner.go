package models

import (
	"fmt"
	"strings"
	"time"
)

// Owner type constants. Identity of an owner is always the
// (owner_type, owner_id) pair; ids are not unique across tables.
const (
	OwnerTypeAsset           = "asset"
	OwnerTypeClientEquipment = "client_equipment"
	OwnerTypeProject         = "project"
	OwnerTypeCustomer        = "customer"
)

// ValidOwnerTypes returns a slice of valid owner types
func ValidOwnerTypes() []string {
	return []string{OwnerTypeAsset, OwnerTypeClientEquipment, OwnerTypeProject, OwnerTypeCustomer}
}

// IsOwnerTypeValid checks if the given owner type is valid
func IsOwnerTypeValid(ownerType string) bool {
	for _, validType := range ValidOwnerTypes() {
		if ownerType == validType {
			return true
		}
	}
	return false
}

// OwnerRef identifies one owner record across the owner tables.
type OwnerRef struct {
	OwnerType string `json:"owner_type"`
	OwnerID   int    `json:"owner_id"`
}

// RecordKey builds the composite lookup key for one matrix cell.
func (o OwnerRef) RecordKey(documentTypeID int) string {
	return fmt.Sprintf("%s:%d:%d", o.OwnerType, o.OwnerID, documentTypeID)
}

type Asset struct {
	AssetID      int        `gorm:"primaryKey;column:asset_id" json:"asset_id"`
	AssetName    string     `gorm:"column:asset_name" json:"asset_name"`
	SerialNumber *string    `gorm:"column:serial_number" json:"serial_number,omitempty"`
	Location     *string    `gorm:"column:location" json:"location,omitempty"`
	CustomerID   *int       `gorm:"column:customer_id" json:"customer_id,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

type ClientEquipment struct {
	EquipmentID   int        `gorm:"primaryKey;column:equipment_id" json:"equipment_id"`
	EquipmentName string     `gorm:"column:equipment_name" json:"equipment_name"`
	Model         *string    `gorm:"column:model" json:"model,omitempty"`
	CustomerID    *int       `gorm:"column:customer_id" json:"customer_id,omitempty"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

type Project struct {
	ProjectID   int        `gorm:"primaryKey;column:project_id" json:"project_id"`
	ProjectName string     `gorm:"column:project_name" json:"project_name"`
	ProjectCode *string    `gorm:"column:project_code" json:"project_code,omitempty"`
	CustomerID  *int       `gorm:"column:customer_id" json:"customer_id,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

type Customer struct {
	CustomerID   int        `gorm:"primaryKey;column:customer_id" json:"customer_id"`
	CustomerName string     `gorm:"column:customer_name" json:"customer_name"`
	City         *string    `gorm:"column:city" json:"city,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (Asset) TableName() string {
	return "assets"
}

func (ClientEquipment) TableName() string {
	return "client_equipment"
}

func (Project) TableName() string {
	return "projects"
}

func (Customer) TableName() string {
	return "customers"
}

// OwnerSummary is the read model the matrix works with, one shape for
// all four owner tables.
type OwnerSummary struct {
	OwnerType    string `json:"owner_type"`
	OwnerID      int    `json:"owner_id"`
	DisplayName  string `json:"display_name"`
	Subtitle     string `json:"subtitle"`
	CustomerName string `json:"customer_name"`
}

// Ref returns the owner identity of this summary.
func (o OwnerSummary) Ref() OwnerRef {
	return OwnerRef{OwnerType: o.OwnerType, OwnerID: o.OwnerID}
}

// MatchesSearch reports whether every word of the query is a
// case-insensitive substring of the owner's name, subtitle or
// customer name.
func (o OwnerSummary) MatchesSearch(query string) bool {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return true
	}

	haystack := strings.ToLower(o.DisplayName + " " + o.Subtitle + " " + o.CustomerName)
	for _, word := range words {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}
