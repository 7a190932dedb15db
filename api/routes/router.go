package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coupleshub/backend/api/controllers"
	"github.com/coupleshub/backend/api/middleware"
	"github.com/coupleshub/backend/internal/auth"
	"github.com/coupleshub/backend/internal/bills"
	"github.com/coupleshub/backend/internal/couples"
	"github.com/coupleshub/backend/internal/events"
	"github.com/coupleshub/backend/internal/groceries"
	syncstream "github.com/coupleshub/backend/internal/sync"
	"github.com/coupleshub/backend/internal/todos"
	"github.com/coupleshub/backend/pkg/auth/session"
	"github.com/coupleshub/backend/pkg/config"
	"github.com/coupleshub/backend/pkg/logger"
	"github.com/coupleshub/backend/pkg/metrics"
	"github.com/coupleshub/backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Redis   *redis.Client
	Session sessionManager
	Health  map[string]controllers.Pinger

	AuthService      auth.Service
	RegisterService  auth.RegisterService
	CouplesService   couples.Service
	EventsService    events.Service
	TodosService     todos.Service
	GroceriesService groceries.Service
	BillsService     bills.Service
	Hub              *syncstream.Hub
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// A typed nil *redis.Client would defeat the middleware's interface nil
	// check, so the guard lives here.
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if p.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, p.Redis, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Health))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/invites/{token}", controllers.InvitePreview(p.CouplesService, logg))
		// Accept doubles as signup, so it gets the register throttle.
		r.With(rateLimit(registerPolicy)).
			Post("/invites/{token}/accept", controllers.InviteAccept(p.CouplesService, p.AuthService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(rateLimit(registerPolicy)).Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.Session, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Session, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Session, logg))

		r.Route("/couple", func(r chi.Router) {
			r.Get("/", controllers.CoupleGet(p.CouplesService, logg))
			r.Post("/invite", controllers.CoupleInvite(p.CouplesService, logg))
			r.Get("/partner", controllers.CouplePartner(p.CouplesService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCouple(logg))

			r.Get("/realtime", controllers.RealtimeStream(p.Hub, logg))

			r.Route("/events", func(r chi.Router) {
				r.Get("/", controllers.EventsList(p.EventsService, logg))
				r.Post("/", controllers.EventsCreate(p.EventsService, logg))
				r.Post("/quick", controllers.EventsQuickAdd(p.EventsService, logg))
				r.Put("/{id}", controllers.EventsUpdate(p.EventsService, logg))
				r.Delete("/{id}", controllers.EventsDelete(p.EventsService, logg))
			})

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", controllers.TodosList(p.TodosService, logg))
				r.Post("/", controllers.TodosCreate(p.TodosService, logg))
				r.Post("/{id}/toggle", controllers.TodosToggle(p.TodosService, logg))
				r.Delete("/{id}", controllers.TodosDelete(p.TodosService, logg))
			})

			r.Route("/groceries", func(r chi.Router) {
				r.Get("/", controllers.GroceriesList(p.GroceriesService, logg))
				r.Post("/", controllers.GroceriesCreate(p.GroceriesService, logg))
				r.Post("/{id}/toggle", controllers.GroceriesToggle(p.GroceriesService, logg))
				r.Post("/clear-checked", controllers.GroceriesClearChecked(p.GroceriesService, logg))
				r.Delete("/{id}", controllers.GroceriesDelete(p.GroceriesService, logg))
			})

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", controllers.BillsList(p.BillsService, logg))
				r.Post("/", controllers.BillsCreate(p.BillsService, logg))
				r.Post("/{id}/toggle", controllers.BillsToggle(p.BillsService, logg))
				r.Get("/summary", controllers.BillsSummary(p.BillsService, logg))
				r.Delete("/{id}", controllers.BillsDelete(p.BillsService, logg))
			})
		})
	})

	return r
}
