package presentation

import (
	"strings"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// RenderError writes {"error": msg} with status and mirrors msg in the
// X-Reason header.
func RenderError(c echo.Context, status int, msg string) error {
	c.Response().Header().Set(ReasonTag, strings.Join(strings.Fields(msg), " "))

	return c.JSON(status, ErrorResponse{Error: msg})
}
