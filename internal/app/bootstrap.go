package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"skill-swap/internal/config"
	"skill-swap/internal/delivery/http/handler"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/delivery/http/routes"
	v1 "skill-swap/internal/delivery/http/routes/v1"
	"skill-swap/internal/pkg/jwt"
	"skill-swap/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(cfg config.Config, c *Container) *App {
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, cfg, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container, prepares storage and starts the
// background workers. The returned cleanup stops them again.
func Bootstrap(ctx context.Context, cfg config.Config) (*App, func() error, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("container: %w", err)
	}
	if err := c.Migrate(ctx); err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	if err := c.Seed(ctx); err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	c.Start(context.Background())

	return New(cfg, c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(errMw.Middleware())

	accessLog := middleware.NewAccessLogMiddleware(logger, "/health", "/metrics")
	app.Use(accessLog.Middleware())
}

func registerRoutes(app *fiber.App, cfg config.Config, c *Container) {
	if app == nil || c == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn, jwt.WithIssuer(cfg.JWT.Issuer))
	auth := middleware.NewAuthMiddleware(jwtSvc)

	timeout := cfg.App.QueryTimeout
	handlers := v1.Handlers{
		Directory: handler.NewDirectoryHandler(c.Directory, timeout),
		Relations: handler.NewRelationHandler(c.Directory, timeout),
		Profile:   handler.NewProfileHandler(c.Directory, timeout),
		Catalog:   handler.NewCatalogHandler(c.Directory),
		Feed:      ws.NewHandler(c.Hub, c.Directory, c.Logger),
	}

	registry := routes.NewRegistry(handler.NewHealthHandler(c.HealthChecks()), handlers, auth)
	registry.Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
