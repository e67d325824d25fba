package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/middleware"
	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/response"
)

const defaultPageSize = 20

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// requireClaims writes 401 and returns nil when the caller is anonymous.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

// bindJSON decodes the request body, writing a 400 on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// listOptions reads the shared search, page, limit, sort and order parameters.
func listOptions(c *gin.Context) models.ListOptions {
	opts := models.ListOptions{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
		Page:      1,
		PageSize:  defaultPageSize,
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		opts.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize))); err == nil {
		opts.PageSize = size
	}
	return opts
}

func optionalBool(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &val
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
