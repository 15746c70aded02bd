// Package httpmw holds the Echo middleware stack every Amon HTTP server
// (Master API, Relay agentprobes/events endpoints) wires identically,
// as one shared helper so the two servers in this repo can't drift
// from each other.
package httpmw

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
)

// Install wires tracing, structured request logging, and panic recovery
// onto e — tracing first so downstream spans nest under the request span.
func Install(e *echo.Echo, serviceName string, logger *zap.Logger) {
	e.Use(otelecho.Middleware(serviceName))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("HTTP request",
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	e.Use(middleware.Recover())
}
