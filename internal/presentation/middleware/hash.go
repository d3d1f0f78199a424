package middleware

import (
	"net/http"

	"xetproxy/internal/application/usecase"
	"xetproxy/internal/domain/model"
	"xetproxy/internal/presentation"

	"github.com/labstack/echo/v4"
)

// ValidateHash rejects requests whose hash parameter is not 64 hex
// characters before the handler runs.
func ValidateHash() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !model.IsValidHash(ctx.Param(presentation.HashParam)) {
				return presentation.RenderError(ctx, http.StatusBadRequest, usecase.InvalidHashMessage)
			}

			return next(ctx)
		}
	}
}
