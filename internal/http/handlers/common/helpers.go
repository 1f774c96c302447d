package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ataurwd/vps-backend-server/internal/http/middleware"
)

// ErrNoIdentity is returned when the auth middleware did not run.
var ErrNoIdentity = errors.New("no authenticated identity in context")

// CurrentUserEmail extracts the caller's email from the Gin context.
func CurrentUserEmail(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextEmailKey)
	if !exists {
		return "", ErrNoIdentity
	}
	email, ok := raw.(string)
	if !ok || email == "" {
		return "", ErrNoIdentity
	}
	return email, nil
}

// CurrentUserRole extracts the caller's role from the Gin context.
func CurrentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", ErrNoIdentity
	}
	role, ok := raw.(string)
	if !ok {
		return "", ErrNoIdentity
	}
	return role, nil
}

// ParseUUIDParam parses a UUID URL parameter.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", paramName)
	}
	return parsed, nil
}

// BindAndValidate binds the JSON body into req.
func BindAndValidate(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func RespondJSON(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "bad request"
	}
	RespondError(c, http.StatusBadRequest, message)
}

func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authorization required"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// ParseIntQuery reads an integer query parameter with a fallback.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination extracts limit and offset from the query with defaults.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 20)
	offset = ParseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}
