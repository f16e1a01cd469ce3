package routes

import (
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/controllers"
	"github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	thesisController *controllers.ThesisController,
	topicController *controllers.TopicController,
	reviewController *controllers.ReviewController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// User administration. Role checks live in the services, against
		// the freshly loaded user.
		users := authenticated.Group("/users")
		{
			users.GET("/me", userController.GetMe)
			users.GET("", userController.ListUsers)
			users.GET("/:id", userController.GetUser)
			users.PUT("/:id/approval", userController.ApproveUser)
			users.PUT("/assignments", userController.AssignStaff)
		}

		// Topic negotiation
		topics := authenticated.Group("/topics")
		{
			topics.POST("/proposals", topicController.ProposeTopic)
			topics.POST("/students/:studentId/decision", topicController.DecideTopic)
			topics.POST("/response", topicController.RespondTopic)
		}

		// Thesis lifecycle and review cycle
		theses := authenticated.Group("/theses")
		{
			theses.POST("", thesisController.SubmitThesis)
			theses.GET("", thesisController.ListTheses)
			theses.GET("/:id", thesisController.GetThesis)
			theses.GET("/:id/document", thesisController.DownloadThesis)
			theses.DELETE("/:id", thesisController.DeleteThesis)

			theses.POST("/:id/reviews", reviewController.SubmitReview)
			theses.POST("/:id/reviews/re-review", reviewController.RequestReReview)
			theses.POST("/:id/sign", reviewController.SignIteration)
			theses.POST("/:id/evaluation", reviewController.Evaluate)
		}
	}
}
