package handler

import (
	"errors"
	"net/url"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/middleware"
	"github.com/noah-isme/taskboard-api/internal/service"
	"github.com/noah-isme/taskboard-api/internal/utils"
)

// UploadHandler accepts task attachments and serves them back.
type UploadHandler struct {
	service service.AttachmentService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.AttachmentService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires upload routes.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/upload/:id", middleware.WithAuth(h.upload, middleware.AuthOptions{}))
	router.Get("/uploads/*", h.download)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	taskID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "Task not found or not assigned to you")
	}

	// A missing part is reported by the service after the role check.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	result, err := h.service.Upload(c.UserContext(), actorFromContext(c), taskID, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized")
		case errors.Is(err, service.ErrNoFilePart):
			return utils.SendError(c, fiber.StatusBadRequest, "No file part")
		case errors.Is(err, service.ErrNoSelectedFile):
			return utils.SendError(c, fiber.StatusBadRequest, "No selected file")
		case errors.Is(err, service.ErrEmptyFile):
			return utils.SendError(c, fiber.StatusBadRequest, "Empty file")
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, service.ErrTaskNotAssigned):
			return utils.SendError(c, fiber.StatusNotFound, "Task not found or not assigned to you")
		case errors.Is(err, service.ErrInvalidFileType):
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid file type")
		default:
			return respondError(c, h.logger, err, "upload")
		}
	}

	return utils.SendSuccess(c, "File uploaded", fiber.Map{
		"filename":  result.FileName,
		"mime_type": result.MimeType,
	})
}

func (h *UploadHandler) download(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "File not found")
	}

	path, err := h.service.Resolve(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "File not found")
		}
		return respondError(c, h.logger, err, "download")
	}

	return c.Download(path, filepath.Base(path))
}
