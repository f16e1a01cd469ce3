package controllers

import (
	"net/http"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/services"
	"github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReviewController handles the review cycle endpoints
type ReviewController struct {
	reviewService *services.ReviewService
	logger        zerolog.Logger
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviewService *services.ReviewService, logger zerolog.Logger) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
		logger:        logger,
	}
}

// SubmitReview records a staff review for the current iteration
// @Summary Submit a review
// @Description Records the assigned staff member's review on the current iteration. One review per role per iteration; a rejected verdict sends the thesis to resubmission_required.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param request body dto.SubmitReviewRequest true "Review"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Not assigned to this thesis or awaiting approval"
// @Failure 409 {object} dto.APIResponse "Role already reviewed this iteration"
// @Router /theses/{id}/reviews [post]
func (c *ReviewController) SubmitReview(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return
	}

	thesis, err := c.reviewService.SubmitReview(ctx.Request.Context(), actorID, thesisID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}

// RequestReReview opens the next review iteration
// @Summary Request a re-review
// @Description Opens the next iteration, leaving prior iterations as immutable history, and returns the thesis to under_review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Not assigned to this thesis"
// @Failure 409 {object} dto.APIResponse "Thesis not in a reviewable state"
// @Router /theses/{id}/reviews/re-review [post]
func (c *ReviewController) RequestReReview(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	thesis, err := c.reviewService.RequestReReview(ctx.Request.Context(), actorID, thesisID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}

// SignIteration uploads the signed review document for the current iteration
// @Summary Sign the current iteration
// @Description The supervisor uploads the signed review document. Evaluation is blocked until the current iteration is signed.
// @Tags reviews
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param file formData file true "Signed review document"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Not the assigned supervisor"
// @Failure 409 {object} dto.APIResponse "Iteration already signed or thesis not under review"
// @Router /theses/{id}/sign [post]
func (c *ReviewController) SignIteration(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Signed document is required")))
		return
	}

	thesis, err := c.reviewService.SignIteration(ctx.Request.Context(), actorID, thesisID, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}

// Evaluate records the final grade
// @Summary Evaluate a thesis
// @Description Records the final grade and moves the thesis to its terminal evaluated state. Requires a signed current iteration.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param request body dto.EvaluateRequest true "Final grade"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Role does not evaluate"
// @Failure 409 {object} dto.APIResponse "Current iteration not signed"
// @Router /theses/{id}/evaluation [post]
func (c *ReviewController) Evaluate(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return
	}

	thesis, err := c.reviewService.Evaluate(ctx.Request.Context(), actorID, thesisID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}
