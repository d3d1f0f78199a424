package router

import (
	"net/http"

	"xetproxy/internal/presentation"
	"xetproxy/internal/presentation/handler"
	"xetproxy/internal/presentation/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// New builds the echo instance serving the proxy routes.
func New(cfg Config, downloadHandler *handler.DownloadHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderContentType},
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		ExposeHeaders: []string{echo.HeaderContentDisposition, presentation.HashTag, presentation.ReasonTag},
		MaxAge:        86400,
	}))
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Secure())

	if cfg.RateLimit > 0 {
		e.Use(echoMiddleware.RateLimiter(echoMiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	e.GET("/", handler.HandleIndex)
	e.GET("/health", handler.HandleHealth)
	e.GET("/download/:owner/:repo/*", downloadHandler.HandleByPath)
	e.GET("/download-hash/:hash", downloadHandler.HandleByHash, middleware.ValidateHash())

	return e
}
