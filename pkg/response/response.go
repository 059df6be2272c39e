package response

import (
	"errors"
	"net/http"

	"billing-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 response with the raw payload (spec.md §6 returns bare
// JSON shapes, not an envelope).
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the raw payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// ValidationDetail is one entry of a 400 response's `detail` array,
// mirroring FastAPI/pydantic's loc/msg/type shape (spec.md §6).
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrorResponse is the 400/401/422 caller-error envelope.
type ValidationErrorResponse struct {
	Detail []ValidationDetail `json:"detail"`
}

// EngineErrorResponse is the 500 engine-fault envelope (spec.md §6: "500
// for engine faults with {exc_type, exc}").
type EngineErrorResponse struct {
	ExcType string `json:"exc_type"`
	Exc     string `json:"exc"`
}

// Error sends an error response, mapping an *apperror.AppError to
// spec.md §6/§7's wire shapes: 5xx faults as {exc_type, exc}, everything
// else as a pydantic-style {detail: [...]}. Any error that isn't an
// *apperror.AppError is treated as an unexpected internal fault.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		c.JSON(appErr.HTTPStatus, EngineErrorResponse{
			ExcType: string(appErr.Kind),
			Exc:     appErr.Error(),
		})
		return
	}

	c.JSON(appErr.HTTPStatus, ValidationErrorResponse{
		Detail: []ValidationDetail{
			{Loc: []string{}, Msg: appErr.Message, Type: string(appErr.Kind)},
		},
	})
}
