package controllers

import (
	"net/http"
	"strconv"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requireUserID pulls the authenticated user id from the context, writing
// the 401 response itself when absent
func requireUserID(ctx *gin.Context) (int64, bool) {
	id, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return 0, false
	}
	return id, true
}

// parseIDParam parses a positive integer path parameter, writing the 400
// response itself on failure
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")))
		return 0, false
	}
	return id, true
}
