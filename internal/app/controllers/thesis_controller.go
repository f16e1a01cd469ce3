package controllers

import (
	"net/http"
	"path/filepath"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/services"
	"github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ThesisController handles thesis lifecycle endpoints
type ThesisController struct {
	thesisService *services.ThesisService
	logger        zerolog.Logger
}

// NewThesisController creates a new ThesisController
func NewThesisController(thesisService *services.ThesisService, logger zerolog.Logger) *ThesisController {
	return &ThesisController{
		thesisService: thesisService,
		logger:        logger,
	}
}

// SubmitThesis handles a thesis document submission or resubmission
// @Summary Submit or resubmit a thesis
// @Description Uploads the thesis document. The topic must be approved first. A resubmission keeps the full review history and opens the next iteration when the current one already holds reviews.
// @Tags theses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Thesis document"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 400 {object} dto.APIResponse "Missing file"
// @Failure 403 {object} dto.APIResponse "Not a student"
// @Failure 409 {object} dto.APIResponse "Topic not approved or thesis already evaluated"
// @Router /theses [post]
func (c *ThesisController) SubmitThesis(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Thesis file is required")))
		return
	}

	thesis, err := c.thesisService.SubmitThesis(ctx.Request.Context(), actorID, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}

// GetThesis returns a thesis with its review history
// @Summary Get a thesis
// @Description Returns the thesis with its full iteration history. Visible to the owner, assigned staff, faculty management and admins.
// @Tags theses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "No relationship to this thesis"
// @Failure 404 {object} dto.APIResponse "Thesis not found"
// @Router /theses/{id} [get]
func (c *ThesisController) GetThesis(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	thesis, err := c.thesisService.GetThesis(ctx.Request.Context(), actorID, thesisID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}

// DownloadThesis streams the thesis document
// @Summary Download the thesis document
// @Tags theses
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {file} binary "Thesis document"
// @Failure 403 {object} dto.APIResponse "No relationship to this thesis"
// @Failure 404 {object} dto.APIResponse "Thesis or document not found"
// @Router /theses/{id}/document [get]
func (c *ThesisController) DownloadThesis(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fullPath, err := c.thesisService.GetThesisFile(ctx.Request.Context(), actorID, thesisID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.FileAttachment(fullPath, filepath.Base(fullPath))
}

// ListTheses returns all theses, optionally filtered by status
// @Summary List theses
// @Description Lists theses for management roles, with an optional status filter
// @Tags theses
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(not_submitted, submitted, under_review, resubmission_required, evaluated)
// @Success 200 {object} dto.APIResponse{data=[]dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Router /theses [get]
func (c *ThesisController) ListTheses(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var statusFilter *models.ThesisStatus
	if raw := ctx.Query("status"); raw != "" {
		status := models.ThesisStatus(raw)
		switch status {
		case models.ThesisNotSubmitted, models.ThesisSubmitted, models.ThesisUnderReview,
			models.ThesisResubmissionRequired, models.ThesisEvaluated:
			statusFilter = &status
		default:
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Unknown status filter")))
			return
		}
	}

	theses, err := c.thesisService.ListTheses(ctx.Request.Context(), actorID, statusFilter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.ThesisResponse, 0, len(theses))
	for _, t := range theses {
		out = append(out, services.ToThesisResponse(t))
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(out))
}

// DeleteThesis removes a thesis and its documents
// @Summary Delete a thesis
// @Description Deletes the thesis, its review history and stored documents, and resets the student's thesis status. Owner or admin only.
// @Tags theses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Thesis not found"
// @Router /theses/{id} [delete]
func (c *ThesisController) DeleteThesis(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.thesisService.DeleteThesis(ctx.Request.Context(), actorID, thesisID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Thesis deleted"}))
}
