package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeOK                  = "OK"
	CodeCreated             = "CREATED"
	CodeBadRequest          = "BAD_REQUEST"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// Response is the unified API response format.
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError represents a structured application error with HTTP status and error code.
type AppError struct {
	HTTPStatus int    // HTTP status code (e.g. 400, 404, 500)
	Code       string // Stable machine-readable code, e.g. PROJECT_NOT_FOUND
	Message    string // Human-readable error message
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches AppErrors by code so wrapped copies compare equal.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.HTTPStatus == t.HTTPStatus
}

// Pre-defined error constructors

func NewBadRequest(code, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: code, Message: msg}
}

func NewUnauthorized(code, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Code: code, Message: msg}
}

func NewForbidden(code, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: code, Message: msg}
}

func NewNotFound(code, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: code, Message: msg}
}

func NewConflict(code, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: code, Message: msg}
}

func NewValidation(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnprocessableEntity, Code: CodeValidation, Message: msg}
}

func NewServerError(code, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: code, Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeCreated,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError, its code and status
// are used; otherwise a generic 500 is returned without leaking err's text.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Response{
		Code:    CodeInternalServerError,
		Message: "internal server error",
	})
}

// Abort writes the error like Error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: msg})
}

func ValidationFailed(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, Response{Code: CodeValidation, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: CodeUnauthorized, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{Code: CodeForbidden, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: msg})
}

func ServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Response{Code: CodeInternalServerError, Message: msg})
}
