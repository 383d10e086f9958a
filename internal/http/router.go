package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig collects the handlers the router mounts. Nil handlers leave
// their routes unregistered, which keeps partial wiring possible in tests.
type RouterConfig struct {
	Bookings   *BookingHandler
	Rooms      *RoomHandler
	Teams      *TeamHandler
	Users      *UserHandler
	Health     *HealthHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the /api/v1 routing table.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Bookings != nil {
			r.Post("/bookings", cfg.Bookings.Create)
			r.Get("/bookings", cfg.Bookings.List)
			r.Post("/bookings/{id}/cancel", cfg.Bookings.Cancel)
		}

		if cfg.Rooms != nil {
			// The static segment must be registered before the catalog
			// routes so chi does not shadow it.
			r.Get("/rooms/available", cfg.Rooms.Available)
			r.Get("/rooms", cfg.Rooms.List)
			r.Post("/rooms", cfg.Rooms.Create)
		}

		if cfg.Teams != nil {
			r.Get("/teams", cfg.Teams.List)
			r.Post("/teams", cfg.Teams.Create)
		}

		if cfg.Users != nil {
			r.Get("/users", cfg.Users.List)
			r.Post("/users", cfg.Users.Create)
		}

		if cfg.Health != nil {
			r.Get("/health", cfg.Health.Check)
		}
	})

	return r
}
