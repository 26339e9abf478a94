// controllers/document_type.go - Document type and folder catalog (Admin)
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"compliance-dashboard-api/models"
	"compliance-dashboard-api/services"
	"compliance-dashboard-api/utils"
)

// GetDocumentTypes lists the matrix columns in configured order
// GET /api/v1/document-types
func GetDocumentTypes(c *gin.Context) {
	types, err := services.ListDocumentTypes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document types"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"document_types": types,
		"total":          len(types),
	})
}

// CreateDocumentType creates a new matrix column (Admin only)
// POST /api/v1/admin/document-types
func CreateDocumentType(c *gin.Context) {
	var req models.CreateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docType, err := services.CreateDocumentType(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document type"})
		return
	}

	// Empty names are ignored, not errored
	if docType == nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"document_type": docType,
	})
}

// UpdateDocumentType renames, re-orders or moves a column (Admin only)
// PUT /api/v1/admin/document-types/:id
func UpdateDocumentType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type id"})
		return
	}

	var req models.UpdateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docType, err := services.UpdateDocumentType(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document type not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"document_type": docType,
	})
}

// DeleteDocumentType removes a column from the matrix (Admin only)
// DELETE /api/v1/admin/document-types/:id
func DeleteDocumentType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type id"})
		return
	}

	if err := services.DeleteDocumentType(c.Request.Context(), id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document type not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetDocumentFolders lists catalog folders
// GET /api/v1/document-folders
func GetDocumentFolders(c *gin.Context) {
	folders, err := services.ListDocumentFolders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document folders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"folders": folders,
		"total":   len(folders),
	})
}

// CreateDocumentFolder creates a catalog folder (Admin only)
// POST /api/v1/admin/document-folders
func CreateDocumentFolder(c *gin.Context) {
	var req models.CreateDocumentFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := services.CreateDocumentFolder(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document folder"})
		return
	}
	if folder == nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"folder":  folder,
	})
}

// UpdateDocumentFolder renames or re-orders a folder (Admin only)
// PUT /api/v1/admin/document-folders/:id
func UpdateDocumentFolder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder id"})
		return
	}

	var req models.UpdateDocumentFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := services.UpdateDocumentFolder(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"folder":  folder,
	})
}

// DeleteDocumentFolder removes a folder; its types keep working with
// folder_id cleared (Admin only)
// DELETE /api/v1/admin/document-folders/:id
func DeleteDocumentFolder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder id"})
		return
	}

	if err := services.DeleteDocumentFolder(c.Request.Context(), id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
