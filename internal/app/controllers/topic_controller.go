package controllers

import (
	"net/http"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/services"
	"github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TopicController handles topic negotiation endpoints
type TopicController struct {
	topicService *services.TopicService
	logger       zerolog.Logger
}

// NewTopicController creates a new TopicController
func NewTopicController(topicService *services.TopicService, logger zerolog.Logger) *TopicController {
	return &TopicController{
		topicService: topicService,
		logger:       logger,
	}
}

// ProposeTopic records a topic proposal
// @Summary Propose a thesis topic
// @Description Students propose for their own thesis; supervisors propose for an assigned student by setting studentId. Only one proposal can be pending at a time.
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProposeTopicRequest true "Topic proposal"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Not the student or the assigned supervisor"
// @Failure 409 {object} dto.APIResponse "Topic already approved or another proposal pending"
// @Router /topics/proposals [post]
func (c *TopicController) ProposeTopic(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.ProposeTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return
	}

	thesis, err := c.topicService.ProposeTopic(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}

// DecideTopic records the supervisor's verdict on a student proposal
// @Summary Decide on a student-proposed topic
// @Description The assigned supervisor approves or rejects the pending student proposal. Rejection comments become visible to the student.
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student user ID"
// @Param request body dto.DecideTopicRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Not the assigned supervisor"
// @Failure 409 {object} dto.APIResponse "No student proposal pending"
// @Router /topics/students/{studentId}/decision [post]
func (c *TopicController) DecideTopic(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	var req dto.DecideTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return
	}

	thesis, err := c.topicService.DecideTopic(ctx.Request.Context(), actorID, studentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}

// RespondTopic records the student's response to a supervisor proposal
// @Summary Respond to a supervisor-proposed topic
// @Description The student accepts or rejects the pending supervisor proposal
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RespondTopicRequest true "Response"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse}
// @Failure 403 {object} dto.APIResponse "Not a student"
// @Failure 409 {object} dto.APIResponse "No supervisor proposal pending"
// @Router /topics/response [post]
func (c *TopicController) RespondTopic(ctx *gin.Context) {
	actorID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.RespondTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return
	}

	thesis, err := c.topicService.RespondTopic(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(services.ToThesisResponse(thesis)))
}
