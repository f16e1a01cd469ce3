// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/services"
	"github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a new account. Student accounts are active immediately; staff accounts await administrator approval before they can act on theses.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Account created"
// @Failure 400 {object} dto.APIResponse "Invalid request payload or role"
// @Failure 409 {object} dto.APIResponse "Email or student number already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(services.ToUserResponse(user, nil)))
}

// Login handles user authentication
// @Summary Log in
// @Description Validates credentials and returns a JWT token pair with the user profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Authenticated"
// @Failure 400 {object} dto.APIResponse "Invalid request payload"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Account disabled"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}
