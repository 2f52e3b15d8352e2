package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix/internal/middleware"
	"civicfix/internal/usecase/user"
	"civicfix/pkg/utils"
)

type UserHandler struct {
	service *user.Service
}

func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	userGroup := router.Group("/user")
	{
		userGroup.POST("/register", h.Register)
		userGroup.POST("/login", h.Login)
	}
}

func (h *UserHandler) RegisterProfileRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/change-password", h.ChangePassword)
	}
}

func (h *UserHandler) RegisterModeratorRoutes(router *gin.RouterGroup) {
	router.GET("/users", h.GetAllUsers)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Handle = utils.SanitizeString(req.Handle)
	req.Email = utils.SanitizeEmail(req.Email)
	req.Phone = utils.SanitizePhone(req.Phone)

	authResponse, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", authResponse)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Handle = utils.SanitizeString(req.Handle)

	authResponse, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	profile, err := h.service.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved", profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req user.UpdateProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)
	req.Phone = utils.SanitizePhone(req.Phone)

	principal := middleware.GetPrincipal(c)

	profile, err := h.service.UpdateProfile(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile updated successfully", profile)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req user.ChangePasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	principal := middleware.GetPrincipal(c)

	if err := h.service.ChangePassword(c.Request.Context(), principal.UserID, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	users, err := h.service.GetAllUsers(c.Request.Context(), principal)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users retrieved", users)
}
