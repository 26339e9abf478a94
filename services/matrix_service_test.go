package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-dashboard-api/models"
	"compliance-dashboard-api/utils"
)

func testOwner(id int, name string) models.OwnerSummary {
	return models.OwnerSummary{OwnerType: models.OwnerTypeAsset, OwnerID: id, DisplayName: name}
}

func recordWithFiles(recordID, ownerID, typeID int, uris ...string) models.DocumentRecord {
	r := models.DocumentRecord{
		RecordID:       recordID,
		OwnerType:      models.OwnerTypeAsset,
		OwnerID:        ownerID,
		DocumentTypeID: typeID,
	}
	names := make([]string, len(uris))
	for i := range uris {
		names[i] = "file.pdf"
	}
	if err := r.SetFiles(uris, names); err != nil {
		panic(err)
	}
	return r
}

func naRecord(recordID, ownerID, typeID int) models.DocumentRecord {
	r := models.DocumentRecord{
		RecordID:        recordID,
		OwnerType:       models.OwnerTypeAsset,
		OwnerID:         ownerID,
		DocumentTypeID:  typeID,
		IsNotApplicable: true,
	}
	if err := r.SetFiles([]string{}, []string{}); err != nil {
		panic(err)
	}
	return r
}

func TestCompletion(t *testing.T) {
	assert.Equal(t, 0, Completion(0, 0))
	assert.Equal(t, 0, Completion(0, 5))
	assert.Equal(t, 50, Completion(1, 2))
	assert.Equal(t, 33, Completion(1, 3))
	assert.Equal(t, 67, Completion(2, 3))
	assert.Equal(t, 100, Completion(3, 3))
	assert.Equal(t, 17, Completion(1, 6))
}

func TestBuildMatrixCompletionTransitions(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	owners := []models.OwnerSummary{testOwner(1, "Crane 12")}
	types := []models.DocumentType{
		{DocumentTypeID: 1, DocumentTypeName: "Insurance", SortOrder: 1},
		{DocumentTypeID: 2, DocumentTypeName: "Inspection", SortOrder: 2},
	}

	// empty grid
	matrix := BuildMatrix(owners, types, nil, today)
	require.Len(t, matrix.Rows, 1)
	assert.Equal(t, 0, matrix.Rows[0].Completion)
	assert.Equal(t, CellEmpty, matrix.Rows[0].Cells[0].Status)
	assert.Equal(t, CellEmpty, matrix.Rows[0].Cells[1].Status)

	// one file on Insurance
	records := []models.DocumentRecord{recordWithFiles(10, 1, 1, "file://f1")}
	matrix = BuildMatrix(owners, types, records, today)
	assert.Equal(t, 50, matrix.Rows[0].Completion)
	assert.Equal(t, CellHasFiles, matrix.Rows[0].Cells[0].Status)
	assert.Equal(t, 1, matrix.Rows[0].Cells[0].FileCount)

	// Inspection marked not applicable
	records = append(records, naRecord(11, 1, 2))
	matrix = BuildMatrix(owners, types, records, today)
	assert.Equal(t, 100, matrix.Rows[0].Completion)
	assert.Equal(t, CellNotApplicable, matrix.Rows[0].Cells[1].Status)

	// Insurance record removed again
	matrix = BuildMatrix(owners, types, records[1:], today)
	assert.Equal(t, 50, matrix.Rows[0].Completion)
	assert.Equal(t, CellEmpty, matrix.Rows[0].Cells[0].Status)
}

func TestBuildMatrixOrdering(t *testing.T) {
	today := time.Now()
	owners := []models.OwnerSummary{
		testOwner(1, "crane B"),
		testOwner(2, "Crane A"),
		testOwner(3, "anchor"),
	}
	types := []models.DocumentType{
		{DocumentTypeID: 5, DocumentTypeName: "Permit", SortOrder: 2},
		{DocumentTypeID: 3, DocumentTypeName: "Insurance", SortOrder: 1},
	}

	matrix := BuildMatrix(owners, types, nil, today)

	// columns by admin sort order, owners by name case-insensitive
	require.Len(t, matrix.Columns, 2)
	assert.Equal(t, 3, matrix.Columns[0].DocumentTypeID)
	assert.Equal(t, 5, matrix.Columns[1].DocumentTypeID)

	require.Len(t, matrix.Rows, 3)
	assert.Equal(t, "anchor", matrix.Rows[0].DisplayName)
	assert.Equal(t, "Crane A", matrix.Rows[1].DisplayName)
	assert.Equal(t, "crane B", matrix.Rows[2].DisplayName)

	// input slices stay untouched
	assert.Equal(t, 5, types[0].DocumentTypeID)
	assert.Equal(t, "crane B", owners[0].DisplayName)
}

func TestBuildMatrixIsDeterministic(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	owners := []models.OwnerSummary{testOwner(1, "Crane 12"), testOwner(2, "Barge 3")}
	types := []models.DocumentType{
		{DocumentTypeID: 1, SortOrder: 1},
		{DocumentTypeID: 2, SortOrder: 2},
	}
	records := []models.DocumentRecord{
		recordWithFiles(10, 1, 1, "file://f1", "file://f2"),
		naRecord(11, 2, 2),
	}

	first := BuildMatrix(owners, types, records, today)
	second := BuildMatrix(owners, types, records, today)
	assert.Equal(t, first, second)
}

func TestBuildMatrixExpiryOnCells(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	owners := []models.OwnerSummary{testOwner(1, "Crane 12")}
	types := []models.DocumentType{
		{DocumentTypeID: 1, SortOrder: 1},
		{DocumentTypeID: 2, SortOrder: 2},
	}

	soon := "2026-03-20"
	withExpiry := recordWithFiles(10, 1, 1, "file://f1")
	withExpiry.ExpiryDate = &soon
	records := []models.DocumentRecord{
		withExpiry,
		recordWithFiles(11, 1, 2, "file://f2"),
	}

	matrix := BuildMatrix(owners, types, records, today)
	cells := matrix.Rows[0].Cells

	require.NotNil(t, cells[0].Expiry)
	assert.Equal(t, utils.ExpiryStatusExpiring30, cells[0].Expiry.Status)
	assert.Equal(t, 5, cells[0].Expiry.DaysLeft)

	// no expiry date means no expiry block at all
	assert.Nil(t, cells[1].Expiry)
}

func TestBuildRecordIndexDuplicateKeepsLowestID(t *testing.T) {
	records := []models.DocumentRecord{
		recordWithFiles(42, 1, 1, "file://late"),
		recordWithFiles(7, 1, 1, "file://early"),
		recordWithFiles(50, 2, 1, "file://other"),
	}

	index := BuildRecordIndex(records)
	require.Len(t, index, 2)

	winner := index[models.OwnerRef{OwnerType: models.OwnerTypeAsset, OwnerID: 1}.RecordKey(1)]
	require.NotNil(t, winner)
	assert.Equal(t, 7, winner.RecordID)
}

func TestFilterOwners(t *testing.T) {
	owners := []models.OwnerSummary{
		{OwnerType: models.OwnerTypeAsset, OwnerID: 1, DisplayName: "Crane 12", CustomerName: "Acme"},
		{OwnerType: models.OwnerTypeAsset, OwnerID: 2, DisplayName: "Barge 3", CustomerName: "Nordic"},
	}
	types := []models.DocumentType{{DocumentTypeID: 1, SortOrder: 1}}
	index := BuildRecordIndex([]models.DocumentRecord{
		recordWithFiles(10, 1, 1, "file://f1"),
		naRecord(11, 2, 1),
	})

	all := FilterOwners(owners, "", false, types, index)
	assert.Len(t, all, 2)

	bySearch := FilterOwners(owners, "crane acme", false, types, index)
	require.Len(t, bySearch, 1)
	assert.Equal(t, 1, bySearch[0].OwnerID)

	// not-applicable does not count as having files
	withFiles := FilterOwners(owners, "", true, types, index)
	require.Len(t, withFiles, 1)
	assert.Equal(t, 1, withFiles[0].OwnerID)

	none := FilterOwners(owners, "excavator", true, types, index)
	assert.Empty(t, none)
}

func TestBuildCellGhostRecordReadsAsEmpty(t *testing.T) {
	// a record with zero files and no exemption flag is dead data left
	// by older write paths and must render exactly like no record
	ghost := models.DocumentRecord{
		RecordID:       9,
		OwnerType:      models.OwnerTypeAsset,
		OwnerID:        1,
		DocumentTypeID: 1,
	}
	index := BuildRecordIndex([]models.DocumentRecord{ghost})

	cell := buildCell(models.OwnerRef{OwnerType: models.OwnerTypeAsset, OwnerID: 1}, 1, index, time.Now())
	assert.Equal(t, CellEmpty, cell.Status)
	assert.Nil(t, cell.RecordID)
}
