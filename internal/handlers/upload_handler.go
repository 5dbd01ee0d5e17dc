package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"ndara/internal/api/middleware"
	"ndara/internal/apperr"
	"ndara/internal/services"
	"ndara/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

const previewTTL = time.Hour

type UploadHandler struct {
	log      *logger.Logger
	storage  AssetStorage
	lectures LectureAssets
}

func NewUploadHandler(storage AssetStorage, lectures LectureAssets) *UploadHandler {
	return &UploadHandler{
		log:      logger.New("upload_handler"),
		storage:  storage,
		lectures: lectures,
	}
}

func allowedAssetType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/") || contentType == "application/pdf"
}

// UploadLectureAsset handles lecture video and pdf uploads
// @Summary Upload a lecture asset
// @Description Stores a video or pdf and attaches it to the lecture, replacing the previous file
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 200 {object} services.Result
// @Failure 400 {object} map[string]string "Validation error or file not found"
// @Failure 403 {object} services.Result "Not the course author"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /api/v1/courses/{courseId}/sections/{sectionId}/lectures/{lectureId}/asset [post]
func (h *UploadHandler) UploadLectureAsset(c echo.Context) error {
	if h.storage == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "Stockage de fichiers non configuré",
		})
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Content-Type must be multipart/form-data",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.log.Warn("No file in upload request: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Aucun fichier fourni",
		})
	}
	fileType := file.Header.Get(echo.HeaderContentType)
	if !allowedAssetType(fileType) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Seules les vidéos et les fichiers PDF sont acceptés",
		})
	}

	ctx := c.Request().Context()
	actor := middleware.GetActor(c)
	courseID, sectionID, lectureID := c.Param("courseId"), c.Param("sectionId"), c.Param("lectureId")

	// Nothing reaches the bucket unless the lecture would accept it
	if res := h.lectures.CheckLectureAsset(ctx, actor, courseID, sectionID, lectureID, fileType); !res.Success {
		return c.JSON(apperr.HTTPStatus(res.Kind), res)
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to read file",
		})
	}

	key := services.AssetKey(courseID, lectureID, file.Filename)

	url, err := h.storage.UploadFile(ctx, content, key, fileType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to upload file",
		})
	}

	res := h.lectures.SetLectureAsset(ctx, actor, courseID, sectionID, lectureID, fileType, key, url)
	if !res.Success {
		h.discard(ctx, key)
		return c.JSON(apperr.HTTPStatus(res.Kind), res)
	}

	h.log.Success("Lecture %s now serves %s", lectureID, key)
	resp := map[string]interface{}{"success": true, "id": res.ID, "key": key}
	if signer, ok := h.storage.(AssetSigner); ok {
		preview, err := signer.GetSignedURL(ctx, key, previewTTL)
		if err != nil {
			h.log.Warn("No preview URL for %s: %v", key, err)
		} else {
			resp["previewUrl"] = preview
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// discard removes a file whose lecture update was refused
func (h *UploadHandler) discard(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := h.storage.DeleteFile(ctx, key); err != nil {
		h.log.Warn("Could not discard orphaned upload %s: %v", key, err)
	}
}
