package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth
const (
	ContextUserID  = "userID"
	ContextEmail   = "email"
	ContextRole    = "role"
	ContextRoles   = "roles"
	ContextFaculty = "faculty"
)

// AuthMiddleware for authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth validates the bearer token and stores the identity claims on the
// request context. Authorization decisions happen in the service layer
// against the freshly loaded user, so stale claims cannot widen access.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Swagger UI sometimes sends the token as a query parameter.
			authHeader = c.Query("authorization")
		}
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			details := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
				details = "Token has expired"
			}
			abortUnauthorized(c, code, details)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextRoles, claims.Roles)
		c.Set(ContextFaculty, claims.Faculty)

		c.Next()
	}
}

// GetUserID returns the authenticated user id from the request context
func GetUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
