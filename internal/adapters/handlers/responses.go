package handlers

import (
	"errors"
	"net/http"

	"github.com/chuhuyvt/FS-Project/internal/domain/errs"

	"github.com/gin-gonic/gin"
)

// ApiResponse - единый конверт ответа HTTP API
type ApiResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, ApiResponse{Success: true, Message: message, Data: data})
}

// respondError выбирает HTTP-статус по коду ошибки
func respondError(c *gin.Context, err error) {
	code := errs.CodeOf(err)
	c.JSON(statusFor(code), ApiResponse{
		Success:   false,
		Message:   messageOf(err),
		ErrorCode: string(code),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ApiResponse{
		Success:   false,
		Message:   message,
		ErrorCode: string(errs.CodeInvalidArgument),
	})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.CodeInvalidConfiguration, errs.CodeArityMismatch, errs.CodeEmptyConditionSet,
		errs.CodeInvalidArgument, errs.CodeUnsupportedTagType:
		return http.StatusBadRequest
	case errs.CodeEndpointNotFound, errs.CodeValueNotFound:
		return http.StatusNotFound
	case errs.CodeDuplicateEndpoint, errs.CodePollActive:
		return http.StatusConflict
	case errs.CodeProtectedEndpoint:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// messageOf отдаёт клиенту текст без префикса операции
func messageOf(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
