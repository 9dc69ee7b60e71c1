package v1

import (
	"skill-swap/internal/delivery/http/handler"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Directory *handler.DirectoryHandler
	Relations *handler.RelationHandler
	Profile   *handler.ProfileHandler
	Catalog   *handler.CatalogHandler
	Feed      *ws.Handler
}

// Register mounts every v1 endpoint. All of them require a valid access
// token; the feed endpoint also accepts it as a query parameter.
func Register(r fiber.Router, h Handlers, auth *middleware.AuthMiddleware) {
	if r == nil || auth == nil {
		return
	}

	if h.Feed != nil {
		r.Get("/ws", auth.WithQueryToken().Middleware(), h.Feed.HandleFeed)
	}

	protected := r.Group("", auth.Middleware())
	if h.Directory != nil {
		h.Directory.RegisterRoutes(protected)
	}
	if h.Profile != nil {
		h.Profile.RegisterRoutes(protected)
	}
	if h.Relations != nil {
		h.Relations.RegisterRoutes(protected)
	}
	if h.Catalog != nil {
		h.Catalog.RegisterRoutes(protected)
	}
}
