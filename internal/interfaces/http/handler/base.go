package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/domain/shared"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/sheet"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/dto"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// requireSession returns the shop session of the request, answering 401 when
// it is incomplete
func (h *BaseHandler) requireSession(c *gin.Context) (integration.Session, bool) {
	session, _ := middleware.GetSession(c)
	if err := session.Validate(); err != nil {
		h.Unauthorized(c, "Shop session required: send "+middleware.ShopHeader+" and "+middleware.AccessTokenHeader)
		return integration.Session{}, false
	}
	return session, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their message; sheet and platform failures map to their stable codes.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	if code := sheet.CodeOf(err); code != "" {
		h.ErrorWithCode(c, code, err.Error())
		return
	}

	switch {
	case errors.Is(err, integration.ErrSessionInvalid), errors.Is(err, integration.ErrPlatformAuthFailed):
		h.Unauthorized(c, err.Error())
	case errors.Is(err, integration.ErrPlatformNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodeNotConfigured, "Commerce platform is not configured")
	case errors.Is(err, integration.ErrPlatformRateLimited):
		h.ErrorWithCode(c, integration.ErrCodeRateLimited, "Commerce platform rate limit exceeded")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.ErrorWithCode(c, integration.ErrCodeCancelled, "Request was cancelled before completion")
	case errors.Is(err, integration.ErrPlatformRequestFailed), errors.Is(err, integration.ErrPlatformInvalidResponse):
		h.ErrorWithCode(c, dto.ErrCodeUpstream, err.Error())
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}

// requireShop returns the shop of the request, answering 401 when no shop was
// named. Read-only endpoints need the shop but no access token.
func (h *BaseHandler) requireShop(c *gin.Context) (string, bool) {
	session, _ := middleware.GetSession(c)
	if session.Shop == "" {
		h.Unauthorized(c, "Shop required: send "+middleware.ShopHeader)
		return "", false
	}
	return session.Shop, true
}
