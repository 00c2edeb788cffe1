package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/service"
	"blogsphere/internal/storage"
)

// UploadHandler accepts files and forwards them to the asset store.
type UploadHandler struct {
	errorMapper
	assets service.AssetStorer
}

// NewUploadHandler creates an upload handler. assets may be nil when no object store is configured.
func NewUploadHandler(assets service.AssetStorer, debug bool) *UploadHandler {
	return &UploadHandler{errorMapper: errorMapper{debug: debug}, assets: assets}
}

// UploadResponse lists the stored files.
type UploadResponse struct {
	Success bool             `json:"success"`
	Files   []*storage.Asset `json:"files"`
}

// readFile loads a multipart file, reading at most one byte past the size limit
// so oversized uploads are still rejected by validation.
func readFile(fh *multipart.FileHeader) (storage.File, error) {
	src, err := fh.Open()
	if err != nil {
		return storage.File{}, apperrors.Validation("could not read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, storage.MaxFileSize+1))
	if err != nil {
		return storage.File{}, apperrors.Validation("could not read uploaded file")
	}
	return storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

func (h *UploadHandler) unavailable() error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, apperrors.ErrorResponse{
		Message: "file uploads are not configured",
		Code:    "UPLOADS_DISABLED",
	})
}

// Single godoc
// @Summary Upload one image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "JPEG, PNG or PDF up to 5MB"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload/single [post]
func (h *UploadHandler) Single(c echo.Context) error {
	if h.assets == nil {
		return h.unavailable()
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return h.fail(apperrors.Validation("field 'image' is required"))
	}
	file, err := readFile(fh)
	if err != nil {
		return h.fail(err)
	}

	asset, err := h.assets.Store(c.Request().Context(), file, storage.FolderPosts)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, UploadResponse{Success: true, Files: []*storage.Asset{asset}})
}

// Multiple godoc
// @Summary Upload up to five files
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "JPEG, PNG or PDF files"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload/multiple [post]
func (h *UploadHandler) Multiple(c echo.Context) error {
	if h.assets == nil {
		return h.unavailable()
	}
	form, err := c.MultipartForm()
	if err != nil {
		return h.fail(apperrors.Validation("multipart form expected"))
	}

	headers := form.File["files"]
	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		file, err := readFile(fh)
		if err != nil {
			return h.fail(err)
		}
		files = append(files, file)
	}

	assets, err := h.assets.StoreMany(c.Request().Context(), files, storage.FolderFiles)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, UploadResponse{Success: true, Files: assets})
}
