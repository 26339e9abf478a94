// services/matrix_service.go - Compliance matrix derivation
//
// The matrix is always re-derived from a fresh fetch: owners, the
// type catalog and the record set go in, rows and completion scores
// come out. Nothing in here mutates state, so rebuilding from an
// unchanged record set always yields an identical grid.
package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"compliance-dashboard-api/config"
	"compliance-dashboard-api/models"
	"compliance-dashboard-api/utils"
)

// Cell status values
const (
	CellEmpty         = "empty"
	CellHasFiles      = "has_files"
	CellNotApplicable = "not_applicable"
)

const matrixCacheTTL = 5 * time.Minute

// MatrixCell is one owner x type intersection of the grid.
type MatrixCell struct {
	DocumentTypeID int                 `json:"document_type_id"`
	Status         string              `json:"status"`
	RecordID       *int                `json:"record_id,omitempty"`
	FileCount      int                 `json:"file_count"`
	ExpiryDate     *string             `json:"expiry_date,omitempty"`
	Expiry         *utils.ExpiryStatus `json:"expiry,omitempty"`
}

// MatrixRow is one owner's row with its completion score.
type MatrixRow struct {
	models.OwnerSummary
	Completion int          `json:"completion"`
	Cells      []MatrixCell `json:"cells"`
}

// Matrix is the full compliance grid for one owner collection.
type Matrix struct {
	Columns []models.DocumentType `json:"columns"`
	Rows    []MatrixRow           `json:"rows"`
}

// Completion computes the percentage of document types satisfied
// (file present or exempt), rounded to the nearest integer. Zero
// configured types is 0%, never a division by zero.
func Completion(satisfied, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(satisfied) / float64(total)))
}

// BuildMatrix derives the grid. Owners are ordered by display name,
// case-insensitive; ties keep their fetch order (stable sort).
// Columns keep the admin-configured sort order.
func BuildMatrix(owners []models.OwnerSummary, types []models.DocumentType, records []models.DocumentRecord, today time.Time) Matrix {
	columns := make([]models.DocumentType, len(types))
	copy(columns, types)
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].SortOrder < columns[j].SortOrder
	})

	sorted := make([]models.OwnerSummary, len(owners))
	copy(sorted, owners)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].DisplayName) < strings.ToLower(sorted[j].DisplayName)
	})

	index := BuildRecordIndex(records)

	rows := make([]MatrixRow, 0, len(sorted))
	for _, owner := range sorted {
		row := MatrixRow{
			OwnerSummary: owner,
			Cells:        make([]MatrixCell, 0, len(columns)),
		}

		satisfied := 0
		for _, column := range columns {
			cell := buildCell(owner.Ref(), column.DocumentTypeID, index, today)
			if cell.Status != CellEmpty {
				satisfied++
			}
			row.Cells = append(row.Cells, cell)
		}

		row.Completion = Completion(satisfied, len(columns))
		rows = append(rows, row)
	}

	return Matrix{Columns: columns, Rows: rows}
}

func buildCell(owner models.OwnerRef, documentTypeID int, index map[string]*models.DocumentRecord, today time.Time) MatrixCell {
	cell := MatrixCell{DocumentTypeID: documentTypeID, Status: CellEmpty}

	record, ok := index[owner.RecordKey(documentTypeID)]
	if !ok {
		return cell
	}

	recordID := record.RecordID
	switch {
	case record.IsNotApplicable:
		cell.Status = CellNotApplicable
		cell.RecordID = &recordID
	case record.HasFiles():
		cell.Status = CellHasFiles
		cell.RecordID = &recordID
		cell.FileCount = record.FileCount()
		cell.ExpiryDate = record.ExpiryDate
		if record.ExpiryDate != nil {
			expiry := utils.ClassifyExpiry(*record.ExpiryDate, today)
			if expiry.Status != utils.ExpiryStatusNone {
				cell.Expiry = &expiry
			}
		}
	default:
		// zero files and not exempt: same as no record
	}
	return cell
}

// ownerHasFiles reports whether any of the owner's cells holds at
// least one uploaded file - the same predicate the HasFiles cell
// variant uses.
func ownerHasFiles(owner models.OwnerRef, types []models.DocumentType, index map[string]*models.DocumentRecord) bool {
	for _, t := range types {
		if record, ok := index[owner.RecordKey(t.DocumentTypeID)]; ok && record.HasFiles() {
			return true
		}
	}
	return false
}

// FilterOwners applies the pre-matrix filters: all-words free-text
// search over name/subtitle/customer, and the "only rows with at
// least one uploaded file" toggle.
func FilterOwners(owners []models.OwnerSummary, search string, hasFilesOnly bool, types []models.DocumentType, index map[string]*models.DocumentRecord) []models.OwnerSummary {
	filtered := make([]models.OwnerSummary, 0, len(owners))
	for _, owner := range owners {
		if !owner.MatchesSearch(search) {
			continue
		}
		if hasFilesOnly && !ownerHasFiles(owner.Ref(), types, index) {
			continue
		}
		filtered = append(filtered, owner)
	}
	return filtered
}

// LoadOwners reads the owner collection backing one matrix surface.
func LoadOwners(ownerType string) ([]models.OwnerSummary, error) {
	owners := []models.OwnerSummary{}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	customerName := func(c *models.Customer) string {
		if c == nil {
			return ""
		}
		return c.CustomerName
	}

	switch ownerType {
	case models.OwnerTypeAsset:
		var assets []models.Asset
		if err := config.DB.Preload("Customer").Where("delete_at IS NULL").Find(&assets).Error; err != nil {
			return nil, utils.TransientError("fetch assets", err)
		}
		for _, a := range assets {
			subtitle := deref(a.SerialNumber)
			if loc := deref(a.Location); loc != "" {
				if subtitle != "" {
					subtitle += " - "
				}
				subtitle += loc
			}
			owners = append(owners, models.OwnerSummary{
				OwnerType:    models.OwnerTypeAsset,
				OwnerID:      a.AssetID,
				DisplayName:  a.AssetName,
				Subtitle:     subtitle,
				CustomerName: customerName(a.Customer),
			})
		}
	case models.OwnerTypeClientEquipment:
		var equipment []models.ClientEquipment
		if err := config.DB.Preload("Customer").Where("delete_at IS NULL").Find(&equipment).Error; err != nil {
			return nil, utils.TransientError("fetch client equipment", err)
		}
		for _, e := range equipment {
			owners = append(owners, models.OwnerSummary{
				OwnerType:    models.OwnerTypeClientEquipment,
				OwnerID:      e.EquipmentID,
				DisplayName:  e.EquipmentName,
				Subtitle:     deref(e.Model),
				CustomerName: customerName(e.Customer),
			})
		}
	case models.OwnerTypeProject:
		var projects []models.Project
		if err := config.DB.Preload("Customer").Where("delete_at IS NULL").Find(&projects).Error; err != nil {
			return nil, utils.TransientError("fetch projects", err)
		}
		for _, p := range projects {
			owners = append(owners, models.OwnerSummary{
				OwnerType:    models.OwnerTypeProject,
				OwnerID:      p.ProjectID,
				DisplayName:  p.ProjectName,
				Subtitle:     deref(p.ProjectCode),
				CustomerName: customerName(p.Customer),
			})
		}
	case models.OwnerTypeCustomer:
		var customers []models.Customer
		if err := config.DB.Where("delete_at IS NULL").Find(&customers).Error; err != nil {
			return nil, utils.TransientError("fetch customers", err)
		}
		for _, c := range customers {
			owners = append(owners, models.OwnerSummary{
				OwnerType:   models.OwnerTypeCustomer,
				OwnerID:     c.CustomerID,
				DisplayName: c.CustomerName,
				Subtitle:    deref(c.City),
			})
		}
	default:
		return nil, utils.ValidationError("unknown owner type %q", ownerType)
	}

	return owners, nil
}

func matrixVersionKey(ownerType string) string {
	return "matrix:ver:" + ownerType
}

func bumpMatrixVersion(ctx context.Context, ownerType string) {
	// cache generations are best effort; entries age out via TTL
	_, _ = config.IncrRedisCounter(ctx, matrixVersionKey(ownerType))
}

func matrixCacheKey(ctx context.Context, ownerType, search string, hasFilesOnly bool) string {
	version, _, _ := config.GetRedisValue(ctx, matrixVersionKey(ownerType))
	if version == "" {
		version = "0"
	}
	return fmt.Sprintf("matrix:%s:v%s:q=%s:hf=%s", ownerType, version,
		strings.ToLower(strings.TrimSpace(search)), strconv.FormatBool(hasFilesOnly))
}

// GetMatrix loads, filters and derives the grid for one owner
// collection, with a redis snapshot cache keyed by the collection's
// cache generation. Every mutation bumps the generation, so a cache
// hit is never stale relative to this instance's own writes.
func GetMatrix(ctx context.Context, ownerType, search string, hasFilesOnly bool) (*Matrix, error) {
	if !models.IsOwnerTypeValid(ownerType) {
		return nil, utils.ValidationError("unknown owner type %q", ownerType)
	}

	cacheKey := matrixCacheKey(ctx, ownerType, search, hasFilesOnly)
	var cached Matrix
	if hit, err := config.GetRedisObject(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	owners, err := LoadOwners(ownerType)
	if err != nil {
		return nil, err
	}

	types, err := ListDocumentTypes()
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]int, len(owners))
	for i, owner := range owners {
		ownerIDs[i] = owner.OwnerID
	}
	records, err := FetchRecordsForOwners(ownerType, ownerIDs)
	if err != nil {
		return nil, err
	}

	index := BuildRecordIndex(records)
	filtered := FilterOwners(owners, search, hasFilesOnly, types, index)
	matrix := BuildMatrix(filtered, types, records, time.Now())

	// caching is best effort; serving the fresh matrix matters more
	_ = config.SetRedisObject(ctx, cacheKey, matrix, matrixCacheTTL)
	return &matrix, nil
}
