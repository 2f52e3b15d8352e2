package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainIssue "civicfix/internal/domain/issue"
	"civicfix/internal/middleware"
	"civicfix/internal/usecase/issue"
	"civicfix/pkg/utils"
)

type IssueHandler struct {
	service *issue.Service
}

func NewIssueHandler(service *issue.Service) *IssueHandler {
	return &IssueHandler{service: service}
}

// RegisterPublicRoutes are readable without a token; the optional-auth
// middleware still resolves a principal when one is presented so authors see
// their own flagged issues.
func (h *IssueHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/issues/:id", h.Get)
}

func (h *IssueHandler) RegisterRoutes(router *gin.RouterGroup) {
	issues := router.Group("/issues")
	{
		issues.POST("", h.Create)
		issues.GET("/mine", h.ListOwn)
		issues.PATCH("/:id", h.UpdateText)
	}
}

func (h *IssueHandler) RegisterModeratorRoutes(router *gin.RouterGroup) {
	issues := router.Group("/issues")
	{
		issues.PATCH("/:id/status", h.UpdateStatus)
		issues.POST("/:id/flag-spam", h.FlagSpam)
		issues.POST("/:id/flag-invalid", h.FlagInvalid)
		issues.POST("/:id/unflag", h.Unflag)
	}
}

func (h *IssueHandler) Create(c *gin.Context) {
	var req issue.CreateIssueRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	principal := middleware.GetPrincipal(c)

	created, err := h.service.Create(c.Request.Context(), principal, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Issue created successfully", created)
}

func (h *IssueHandler) Get(c *gin.Context) {
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	principal := middleware.GetPrincipal(c)

	iss, err := h.service.Get(c.Request.Context(), principal, issueID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Issue retrieved", iss)
}

func (h *IssueHandler) ListOwn(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	issues, total, err := h.service.ListOwn(c.Request.Context(), principal, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Issues retrieved", gin.H{
		"items": issues,
		"total": total,
		"page":  page,
	})
}

func (h *IssueHandler) UpdateText(c *gin.Context) {
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	var req issue.UpdateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	principal := middleware.GetPrincipal(c)

	updated, err := h.service.UpdateText(c.Request.Context(), principal, issueID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Issue updated successfully", updated)
}

func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	var req issue.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	principal := middleware.GetPrincipal(c)

	updated, err := h.service.UpdateStatus(c.Request.Context(), principal, issueID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Issue status updated", updated)
}

func (h *IssueHandler) FlagSpam(c *gin.Context) {
	h.flag(c, domainIssue.FlagSpam)
}

func (h *IssueHandler) FlagInvalid(c *gin.Context) {
	h.flag(c, domainIssue.FlagInvalid)
}

func (h *IssueHandler) flag(c *gin.Context, flag domainIssue.ModerationFlag) {
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	var req issue.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	principal := middleware.GetPrincipal(c)

	flagged, err := h.service.Flag(c.Request.Context(), principal, issueID, flag, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Issue flagged", flagged)
}

func (h *IssueHandler) Unflag(c *gin.Context) {
	issueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	var req issue.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	principal := middleware.GetPrincipal(c)

	cleared, err := h.service.Unflag(c.Request.Context(), principal, issueID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Issue flag cleared", cleared)
}
