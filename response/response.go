package response

import (
	"net/http"

	apperrors "lablinc/errors"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply.
type Response struct {
	Code       int         `json:"code"`
	Mess       string      `json:"mess"`
	Error      string      `json:"error,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Success returns 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 1,
		Mess: "Success",
		Data: data,
	})
}

// Created returns 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code: 1,
		Mess: "Created",
		Data: data,
	})
}

// SuccessWithPagination returns 200 with a page of data.
func SuccessWithPagination(c *gin.Context, data interface{}, page, limit, total int) {
	c.JSON(http.StatusOK, Response{
		Code: 1,
		Mess: "Success",
		Data: data,
		Pagination: &Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

func ServerError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Response{
		Code: 0,
		Mess: "Internal server error",
	})
}

func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{
		Code:  0,
		Mess:  "Unauthorized",
		Error: string(apperrors.ErrCodeUnauthorized),
	})
}

func Forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, Response{
		Code:  0,
		Mess:  "Access denied",
		Error: string(apperrors.ErrCodeForbidden),
	})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code:  0,
		Mess:  "Not found",
		Error: string(apperrors.ErrCodeNotFound),
	})
}

func ValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:  0,
		Mess:  message,
		Error: string(apperrors.ErrCodeValidation),
	})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code: 0,
		Mess: message,
	})
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeUnauthorized, apperrors.ErrCodeInvalidToken, apperrors.ErrCodeMissingToken,
		apperrors.ErrCodeInvalidLogin:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden, apperrors.ErrCodeUserInactive:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeUserNotFound, apperrors.ErrCodeDBNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeBookingConflict, apperrors.ErrCodeUserExists, apperrors.ErrCodeDBDuplicate,
		apperrors.ErrCodeAlreadyReviewed, apperrors.ErrCodeAlreadyPaid, apperrors.ErrCodePaymentInProgress:
		return http.StatusConflict
	case apperrors.ErrCodePaymentFailed, apperrors.ErrCodeUploadFailed:
		return http.StatusBadGateway
	case apperrors.ErrCodeDBError:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// FromError writes the reply for err. Errors without an AppError in their
// chain are reported as 500 and reported back to the caller as false.
func FromError(c *gin.Context, err error) bool {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		_ = c.Error(err)
		ServerError(c)
		return false
	}
	status := StatusFor(appErr.Code)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		ServerError(c)
		return false
	}
	c.JSON(status, Response{
		Code:  0,
		Mess:  appErr.Message,
		Error: string(appErr.Code),
	})
	return true
}
