package controllers

import (
	"net/http"
	"strconv"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/services"
	"github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserController handles user administration endpoints
type UserController struct {
	userService       *services.UserService
	assignmentService *services.AssignmentService
	logger            zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, assignmentService *services.AssignmentService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService:       userService,
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// GetMe returns the authenticated user's profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Router /users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	actorID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	resp, err := c.userService.GetUser(ctx.Request.Context(), actorID, actorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// GetUser returns a user profile by id
// @Summary Get a user
// @Description Returns a user profile. Own profile is always visible; other profiles require a management role.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	actorID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	targetID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid user id")))
		return
	}

	resp, err := c.userService.GetUser(ctx.Request.Context(), actorID, targetID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// ListUsers returns users, optionally filtered by role, paginated
// @Summary List users
// @Description Lists users for management roles, with an optional role filter matching primary or secondary roles
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter" Enums(student, reviewer, supervisor, consultant, head_of_department, dean, admin)
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse}
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	actorID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var roleFilter *models.Role
	if raw := ctx.Query("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Unknown role filter")))
			return
		}
		roleFilter = &role
	}

	users, err := c.userService.ListUsers(ctx.Request.Context(), actorID, roleFilter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.CalculateSliceIndices(page, size, len(users))

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.UserListResponse{
		Users:          users[start:end],
		PaginationInfo: helpers.NewPaginationInfo(int64(len(users)), page, size),
	}))
}

// ApproveUser sets the approval flag on a staff account
// @Summary Approve or revoke a staff account
// @Description Management roles vet staff accounts. Unapproved staff are denied review actions.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.ApproveUserRequest true "Approval flag"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /users/{id}/approval [put]
func (c *UserController) ApproveUser(ctx *gin.Context) {
	actorID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	targetID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid user id")))
		return
	}

	var req dto.ApproveUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return
	}

	if err := c.userService.ApproveUser(ctx.Request.Context(), actorID, targetID, req.Approved); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Approval updated"}))
}

// AssignStaff binds, replaces or clears a staff assignment for a student
// @Summary Assign staff to a student
// @Description Binds a supervisor, consultant or reviewer to a student. A null staffId clears the assignment. An in-flight thesis follows the reassignment.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignStaffRequest true "Assignment"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 400 {object} dto.APIResponse "Invalid role or staff member"
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "Student or staff member not found"
// @Router /users/assignments [put]
func (c *UserController) AssignStaff(ctx *gin.Context) {
	actorID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.AssignStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return
	}

	if err := c.assignmentService.AssignStaff(ctx.Request.Context(), actorID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Assignment updated"}))
}
