package routes

import (
	"ndara/internal/api/middleware"
	"ndara/internal/handlers"
	"ndara/internal/models"
	"ndara/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

// SetupUploadRoutes mounts lecture asset uploads under an authenticated group
func SetupUploadRoutes(api *echo.Group, storage handlers.AssetStorage, lectures handlers.LectureAssets) {
	log := logger.New("upload_routes")

	uploadHandler := handlers.NewUploadHandler(storage, lectures)

	lectureGroup := api.Group("/courses/:courseId/sections/:sectionId/lectures/:lectureId")
	lectureGroup.Use(middleware.RequireAnyPermission(models.PermAuthorContent, models.PermManageCourses))
	lectureGroup.POST("/asset", uploadHandler.UploadLectureAsset)

	if storage == nil {
		log.Warn("Upload routes mounted without storage; uploads will answer 503")
		return
	}
	log.Success("Upload routes initialized successfully")
}
