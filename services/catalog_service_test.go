package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-dashboard-api/models"
	"compliance-dashboard-api/utils"
)

var typeColumns = []string{
	"document_type_id", "document_type_name", "sort_order", "folder_id",
	"create_at", "update_at", "delete_at",
}

func TestCreateDocumentTypeIgnoresEmptyName(t *testing.T) {
	mock := newMockDB(t)

	docType, err := CreateDocumentType(context.Background(),
		models.CreateDocumentTypeRequest{DocumentTypeName: "   "})
	require.NoError(t, err)
	assert.Nil(t, docType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocumentTypeAppendsToSortOrder(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT MAX\\(sort_order\\) FROM `document_types`").
		WillReturnRows(mock.NewRows([]string{"MAX(sort_order)"}).AddRow(4))
	mock.ExpectExec("INSERT INTO `document_types`").
		WillReturnResult(sqlmock.NewResult(9, 1))

	docType, err := CreateDocumentType(context.Background(),
		models.CreateDocumentTypeRequest{DocumentTypeName: "Insurance"})
	require.NoError(t, err)
	require.NotNil(t, docType)
	assert.Equal(t, 9, docType.DocumentTypeID)
	assert.Equal(t, "Insurance", docType.DocumentTypeName)
	assert.Equal(t, 5, docType.SortOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocumentTypeFirstEntryStartsAtOne(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT MAX\\(sort_order\\) FROM `document_types`").
		WillReturnRows(mock.NewRows([]string{"MAX(sort_order)"}).AddRow(nil))
	mock.ExpectExec("INSERT INTO `document_types`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	docType, err := CreateDocumentType(context.Background(),
		models.CreateDocumentTypeRequest{DocumentTypeName: "Permit"})
	require.NoError(t, err)
	assert.Equal(t, 1, docType.SortOrder)
}

func TestUpdateDocumentTypeClearFolder(t *testing.T) {
	mock := newMockDB(t)
	folderID := 2
	mock.ExpectQuery("SELECT \\* FROM `document_types` WHERE delete_at IS NULL").
		WillReturnRows(mock.NewRows(typeColumns).
			AddRow(3, "Insurance", 1, folderID, nil, nil, nil))
	mock.ExpectExec("UPDATE `document_types` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	docType, err := UpdateDocumentType(context.Background(), 3,
		models.UpdateDocumentTypeRequest{ClearFolder: true})
	require.NoError(t, err)
	assert.Nil(t, docType.FolderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDocumentTypeEmptyNameLeavesCurrent(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `document_types` WHERE delete_at IS NULL").
		WillReturnRows(mock.NewRows(typeColumns).
			AddRow(3, "Insurance", 1, nil, nil, nil, nil))
	mock.ExpectExec("UPDATE `document_types` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	empty := "  "
	docType, err := UpdateDocumentType(context.Background(), 3,
		models.UpdateDocumentTypeRequest{DocumentTypeName: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Insurance", docType.DocumentTypeName)
}

func TestUpdateDocumentTypeNotFound(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `document_types` WHERE delete_at IS NULL").
		WillReturnRows(mock.NewRows(typeColumns))

	_, err := UpdateDocumentType(context.Background(), 99, models.UpdateDocumentTypeRequest{})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDeleteDocumentTypeSoftDeletes(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectExec("UPDATE `document_types` SET `delete_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, DeleteDocumentType(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocumentTypeNotFound(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectExec("UPDATE `document_types` SET `delete_at`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := DeleteDocumentType(context.Background(), 99)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDeleteDocumentFolderClearsTypeRefs(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `document_folders` SET `delete_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `document_types` SET `folder_id`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, DeleteDocumentFolder(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocumentFolderNotFoundRollsBack(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `document_folders` SET `delete_at`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := DeleteDocumentFolder(context.Background(), 99)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
