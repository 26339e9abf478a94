// controllers/document_record.go - Matrix cell mutations
package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-dashboard-api/models"
	"compliance-dashboard-api/services"
	"compliance-dashboard-api/utils"
)

const maxUploadSize = int64(25 * 1024 * 1024) // 25MB per file

var allowedUploadTypes = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// pairFromParams resolves and validates the (owner, type) pair of a
// cell mutation route.
func pairFromParams(c *gin.Context) (models.OwnerRef, int, bool) {
	ownerType := c.Param("owner_type")
	if !models.IsOwnerTypeValid(ownerType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner type"})
		return models.OwnerRef{}, 0, false
	}

	ownerID, err := strconv.Atoi(c.Param("owner_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner id"})
		return models.OwnerRef{}, 0, false
	}

	documentTypeID, err := strconv.Atoi(c.Param("type_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type id"})
		return models.OwnerRef{}, 0, false
	}

	return models.OwnerRef{OwnerType: ownerType, OwnerID: ownerID}, documentTypeID, true
}

// UploadDocumentFiles uploads one or more files into a matrix cell
// POST /api/v1/documents/:owner_type/:owner_id/:type_id/upload
func UploadDocumentFiles(c *gin.Context) {
	owner, documentTypeID, ok := pairFromParams(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	for _, fh := range files {
		if fh.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 25MB limit"})
			return
		}
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedUploadTypes[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
			return
		}
	}

	var expiryDate *string
	if raw := strings.TrimSpace(c.PostForm("expiry_date")); raw != "" {
		if !utils.ValidateExpiryDate(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiry date, want YYYY-MM-DD"})
			return
		}
		expiryDate = &raw
	}

	// Push bytes to file storage first; the record only ever
	// references URIs that already exist. An interrupted batch leaves
	// the stored blobs alone and writes nothing to the record.
	stored := make([]utils.StoredFile, 0, len(files))
	for _, fh := range files {
		sf, err := utils.SaveUpload(c.Request.Context(), owner.OwnerType, owner.OwnerID, documentTypeID, fh)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store file, nothing was saved to the record"})
			return
		}
		stored = append(stored, sf)
	}

	record, err := services.UploadFiles(c.Request.Context(), owner, documentTypeID, stored, expiryDate)
	if err != nil {
		writeServiceError(c, err, "Failed to save document record")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": record.ToResponse(),
	})
}

// RemoveDocumentFile removes one file from a cell; removing the last
// file deletes the record
// POST /api/v1/documents/remove-file
func RemoveDocumentFile(c *gin.Context) {
	var req models.RemoveDocumentFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsOwnerTypeValid(req.OwnerType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner type"})
		return
	}

	owner := models.OwnerRef{OwnerType: req.OwnerType, OwnerID: req.OwnerID}
	removed, err := services.RemoveFile(c.Request.Context(), owner, req.DocumentTypeID, req.FileURI)
	if err != nil {
		writeServiceError(c, err, "Failed to remove file")
		return
	}

	// An already-removed file is a no-op, not an error
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"removed": removed,
	})
}

// ToggleNotApplicable flips the cell's exemption flag
// POST /api/v1/documents/:owner_type/:owner_id/:type_id/toggle-na
func ToggleNotApplicable(c *gin.Context) {
	owner, documentTypeID, ok := pairFromParams(c)
	if !ok {
		return
	}

	record, err := services.ToggleNotApplicable(c.Request.Context(), owner, documentTypeID)
	if err != nil {
		if errors.Is(err, utils.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Remove the uploaded files before marking this document not applicable"})
			return
		}
		writeServiceError(c, err, "Failed to toggle not applicable")
		return
	}

	if record == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "document": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "document": record.ToResponse()})
}

// UpdateDocumentRecord patches record metadata
// PUT /api/v1/documents/:record_id
func UpdateDocumentRecord(c *gin.Context) {
	recordID, err := strconv.Atoi(c.Param("record_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	var req models.UpdateDocumentRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := services.UpdateRecordMetadata(c.Request.Context(), recordID, req)
	if err != nil {
		writeServiceError(c, err, "Failed to update document record")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "document": record.ToResponse()})
}

// DownloadDocumentFile redirects to a time-limited signed URL for one
// file of a record
// GET /api/v1/documents/download/:record_id/:index
func DownloadDocumentFile(c *gin.Context) {
	recordID, err := strconv.Atoi(c.Param("record_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file index"})
		return
	}

	record, err := services.GetRecordByID(recordID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document record not found"})
			return
		}
		writeServiceError(c, err, "Failed to load document record")
		return
	}

	uris := record.FileURIList()
	if index >= len(uris) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File index out of range"})
		return
	}

	signedURL, err := utils.SignedDownloadURL(c.Request.Context(), uris[index], 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to sign download url"})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, signedURL)
}

// ServePublicFile serves a locally stored file authenticated by the
// HMAC signature embedded in its signed URL
// GET /public/files
func ServePublicFile(c *gin.Context) {
	path, err := utils.VerifyLocalDownload(c.Query("path"), c.Query("exp"), c.Query("sig"))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired download link"})
		return
	}
	c.File(path)
}

func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, utils.ErrTransientIO):
		// stale-but-consistent beats disappearing: the client keeps
		// its last-known-good state and shows a retry notice
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fallback, "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
