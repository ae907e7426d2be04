// Package webserver hosts the POS HTTP API. Handlers register themselves
// through ApiGET/ApiPOST/... onto a JWT-protected group; login and health
// endpoints go through the public helpers.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bjo163/warungpos/config"
	"github.com/bjo163/warungpos/internal/catalog"
	"github.com/bjo163/warungpos/internal/notify"
	"github.com/bjo163/warungpos/internal/payment"
	"github.com/bjo163/warungpos/internal/pos"
	"github.com/bjo163/warungpos/internal/report"
)

// ContextDBKey carries the gorm handle into request contexts.
const ContextDBKey = "warungpos.db"

// AppContext is what the web layer needs from the application container.
type AppContext interface {
	Config() *config.AppConfig
	DB() *gorm.DB
	Bus() EventBus.Bus
	PosManager() *pos.Manager
	CatalogService() *catalog.Service
	PaymentService() *payment.Service
	PaymentStore() payment.Store
	ReportService() *report.Service
	NotifyService() *notify.Service
}

// CustomValidator wires go-playground/validator into echo's binding.
type CustomValidator struct {
	validate *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// WebServer is the singleton POS API server.
type WebServer struct {
	app  AppContext
	root *echo.Echo
	api  *echo.Group
	pub  *echo.Group
}

var server *WebServer

// Init builds the echo instance, middleware stack and route groups.
func Init(app AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validate: validator.New()}
	e.Use(loggerMiddleware())
	e.Use(recoverMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextDBKey, app.DB())
			return next(c)
		}
	})

	pub := e.Group("")
	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(app.Config().Web.Secret),
	}))

	server = &WebServer{app: app, root: e, api: api, pub: pub}
	return server
}

// App exposes the application container to registered handlers.
func App() AppContext {
	return server.app
}

// Start serves until the context is cancelled.
func (s *WebServer) Start(ctx context.Context) error {
	cfg := s.app.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("web server listening", zap.String("addr", addr))
		errCh <- s.root.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.root.Shutdown(shutdownCtx)
	}
}

func loggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("took", time.Since(start)))
			return err
		}
	}
}

func recoverMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					zap.L().Error("handler panic",
						zap.String("path", c.Request().URL.Path),
						zap.Any("panic", r))
					_ = c.JSON(http.StatusInternalServerError, map[string]string{
						"code":    "INTERNAL_ERROR",
						"message": "internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}

// Route registration helpers; handlers call these from their init routers.

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

func PubGET(path string, h echo.HandlerFunc) {
	server.pub.GET(path, h)
}

func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}
