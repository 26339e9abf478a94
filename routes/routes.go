package routes

import (
	"compliance-dashboard-api/controllers"
	"compliance-dashboard-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// Signed local-storage downloads carry their own HMAC auth
	router.GET("/public/files", controllers.ServePublicFile)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Compliance Dashboard API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Change notification stream for the grid and its
			// detail/viewer sub-panels
			protected.GET("/events", controllers.StreamChangeEvents)

			// Catalog (read)
			protected.GET("/document-types", controllers.GetDocumentTypes)
			protected.GET("/document-folders", controllers.GetDocumentFolders)

			// Compliance matrix
			protected.GET("/matrix/:owner_type", controllers.GetMatrix)

			// Matrix cell mutations
			documents := protected.Group("/documents")
			documents.Use(middleware.RequireRole(middleware.RoleEditor, middleware.RoleAdmin))
			{
				documents.POST("/:owner_type/:owner_id/:type_id/upload", controllers.UploadDocumentFiles)
				documents.POST("/:owner_type/:owner_id/:type_id/toggle-na", controllers.ToggleNotApplicable)
				documents.POST("/remove-file", controllers.RemoveDocumentFile)
				documents.PUT("/:record_id", controllers.UpdateDocumentRecord)
			}

			// Downloads are open to viewers as well
			protected.GET("/documents/download/:record_id/:index", controllers.DownloadDocumentFile)

			// Catalog administration
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(middleware.RoleAdmin))
			{
				admin.POST("/document-types", controllers.CreateDocumentType)
				admin.PUT("/document-types/:id", controllers.UpdateDocumentType)
				admin.DELETE("/document-types/:id", controllers.DeleteDocumentType)

				admin.POST("/document-folders", controllers.CreateDocumentFolder)
				admin.PUT("/document-folders/:id", controllers.UpdateDocumentFolder)
				admin.DELETE("/document-folders/:id", controllers.DeleteDocumentFolder)
			}
		}
	}
}
