package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/efedauth/internal/http/controllers/auth"
	mw "github.com/dropDatabas3/efedauth/internal/http/middlewares"
	"github.com/dropDatabas3/efedauth/internal/security/csrf"
	"github.com/dropDatabas3/efedauth/internal/session"
)

// AuthRouterDeps contiene las dependencias de las rutas de auth.
type AuthRouterDeps struct {
	Controllers *ctrl.Controllers
	Sessions    *session.Manager
	CSRF        *csrf.Deriver
	AllowSeed   bool
}

// RegisterAuthRoutes registra /auth/* (sesión + CSRF) y /roles (público, cacheable).
// r es el subrouter de /api.
func RegisterAuthRoutes(r chi.Router, deps AuthRouterDeps) {
	c := deps.Controllers

	// GET /api/roles
	r.Get("/roles", c.Roles.List)

	r.Route("/auth", func(a chi.Router) {
		a.Use(
			mw.WithNoStore(),
			mw.WithSession(deps.Sessions),
			mw.WithCSRF(deps.CSRF),
		)

		a.Get("/csrf", c.Session.CSRF)
		a.Get("/me", c.Session.Me)
		a.Post("/logout", c.Session.Logout)

		a.Post("/login", c.Login.Login)
		a.Post("/2fa/verify", c.Login.Verify2FA)

		a.Post("/2fa/setup", c.TwoFactor.Setup)
		a.Post("/2fa/enable", c.TwoFactor.Enable)
		a.Post("/2fa/disable", c.TwoFactor.Disable)

		a.Post("/users", c.Users.Create)
		if deps.AllowSeed {
			a.Post("/seed", c.Users.Seed)
		}
	})
}
