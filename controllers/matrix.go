// controllers/matrix.go - Compliance matrix read surface
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-dashboard-api/services"
	"compliance-dashboard-api/utils"
)

// matrixFetchBudget caps one grid derivation. A slow store must show
// up as a retryable error, not a hung grid.
const matrixFetchBudget = 5 * time.Second

// GetMatrix returns the compliance grid for one owner collection
// GET /api/v1/matrix/:owner_type?search=&has_files=1
func GetMatrix(c *gin.Context) {
	ownerType := c.Param("owner_type")
	search := c.Query("search")
	hasFilesOnly := c.Query("has_files") == "1" || c.Query("has_files") == "true"

	ctx, cancel := context.WithTimeout(c.Request.Context(), matrixFetchBudget)
	defer cancel()

	matrix, err := services.GetMatrix(ctx, ownerType, search, hasFilesOnly)
	if err != nil {
		if errors.Is(err, utils.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner type"})
			return
		}
		writeServiceError(c, err, "Failed to build compliance matrix")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"matrix":  matrix,
	})
}
