package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix/internal/usecase/search"
	"civicfix/pkg/utils"
)

type SearchHandler struct {
	service *search.Service
}

func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/issues", h.Search)
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req search.Request

	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	req.Text = utils.SanitizeString(req.Text)

	result, err := h.service.Search(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Search results", result)
}
