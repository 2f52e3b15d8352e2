package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix/internal/middleware"
	"civicfix/internal/usecase/media"
	"civicfix/pkg/utils"
)

type MediaHandler struct {
	service *media.Service
}

func NewMediaHandler(service *media.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/media/images", h.UploadImage)
}

func (h *MediaHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Missing image file")
		return
	}

	if fileHeader.Size > media.MaxImageBytes {
		utils.ErrorResponse(c, http.StatusBadRequest, "Image exceeds the 5 MiB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unreadable image file")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, media.MaxImageBytes+1))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unreadable image file")
		return
	}

	principal := middleware.GetPrincipal(c)
	contentType := fileHeader.Header.Get("Content-Type")

	uploaded, err := h.service.UploadImage(c.Request.Context(), principal, contentType, body)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Image uploaded successfully", uploaded)
}
