package handlers

import (
	"dukan/internal/middleware"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler hands out presigned image upload URLs.
type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	router.Post("/upload/presign", protect, h.HandlePresign)
}

type presignRequest struct {
	Folder      string `json:"folder" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

func (h *UploadHandler) HandlePresign(c *fiber.Ctx) error {
	var req presignRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	upload, err := h.service.PresignImage(c.UserContext(), middleware.UserID(c), req.Folder, req.ContentType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "upload": upload})
}
