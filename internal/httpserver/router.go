package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"autoparts/internal/auth"
	"autoparts/internal/httpserver/handlers"
	"autoparts/internal/metrics"
	"autoparts/internal/policy"
	"autoparts/internal/services/catalog"
	"autoparts/internal/services/identity"
)

// authRequestsPerMinute caps credential endpoints per client IP.
const authRequestsPerMinute = 30

type Options struct {
	Catalog  *catalog.Service
	Identity *identity.Service
	Tokens   *auth.Manager
	Logger   *zap.SugaredLogger

	// Ready reports whether backing storage is reachable.
	Ready func(context.Context) error

	PolicyMode         policy.Mode
	AllowedOrigins     []string
	RateLimitPerMinute int
}

func NewRouter(o Options) http.Handler {
	lg := o.Logger
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(lg), middleware.Recoverer)
	r.Use(metrics.Middleware)

	origins := o.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))
	if o.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(o.RateLimitPerMinute, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if o.Ready != nil {
			if err := o.Ready(r.Context()); err != nil {
				lg.Warnw("readiness check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		authenticate := auth.Authenticate(o.Tokens)

		v1.Route("/auth", func(a chi.Router) {
			a.Group(func(public chi.Router) {
				public.Use(auth.OptionalAuthenticate(o.Tokens))
				public.Use(httprate.LimitByIP(authRequestsPerMinute, time.Minute))
				public.Post("/register", handlers.Register(o.Identity, lg))
				public.Post("/login", handlers.Login(o.Identity, lg))
				public.Post("/refresh", handlers.Refresh(o.Identity, lg))
			})
			a.With(authenticate, auth.RequireIdentity).Post("/logout", handlers.Logout(o.Identity, lg))
		})

		v1.Group(func(api chi.Router) {
			api.Use(authenticate)
			api.Group(func(protected chi.Router) {
				protected.Use(auth.RequireIdentity)
				protected.Get("/me", handlers.Me(o.Identity, lg))
				protected.Get("/logs", handlers.MyLogs(o.Catalog, lg))
			})

			api.Route("/part-car-models", func(pcm chi.Router) {
				pcm.Use(policy.Require(policy.AdminOrReadOnly, "associations"))
				pcm.Post("/associate", handlers.Associate(o.Catalog, lg))
				pcm.Get("/by-car-model", handlers.AssociationsByCarModel(o.Catalog, lg))
				pcm.Get("/by-part", handlers.AssociationsByPart(o.Catalog, lg))
				pcm.Get("/", handlers.ListAssociations(o.Catalog, lg))
				pcm.Post("/", handlers.CreateAssociation(o.Catalog, lg))
				pcm.Get("/{id}", handlers.GetAssociation(o.Catalog, lg))
				pcm.Put("/{id}", handlers.UpdateAssociation)
				pcm.Patch("/{id}", handlers.UpdateAssociation)
				pcm.Delete("/{id}", handlers.DeleteAssociation(o.Catalog, lg))
			})

			catalogPolicy := o.PolicyMode.Catalog()
			api.Route("/parts", func(parts chi.Router) {
				parts.Use(policy.Require(catalogPolicy, "parts"))
				parts.Get("/", handlers.ListParts(o.Catalog, lg))
				parts.Post("/", handlers.CreatePart(o.Catalog, lg))
				parts.Get("/{id}", handlers.GetPart(o.Catalog, lg))
				parts.Get("/{id}/car-models", handlers.PartCarModels(o.Catalog, lg))
				parts.Put("/{id}", handlers.ReplacePart(o.Catalog, lg))
				parts.Patch("/{id}", handlers.PatchPart(o.Catalog, lg))
				parts.Delete("/{id}", handlers.DeletePart(o.Catalog, lg))
			})
			api.Route("/car-models", func(cms chi.Router) {
				cms.Use(policy.Require(catalogPolicy, "car_models"))
				cms.Get("/", handlers.ListCarModels(o.Catalog, lg))
				cms.Post("/", handlers.CreateCarModel(o.Catalog, lg))
				cms.Get("/{id}", handlers.GetCarModel(o.Catalog, lg))
				cms.Put("/{id}", handlers.ReplaceCarModel(o.Catalog, lg))
				cms.Patch("/{id}", handlers.PatchCarModel(o.Catalog, lg))
				cms.Delete("/{id}", handlers.DeleteCarModel(o.Catalog, lg))
			})

			api.Route("/admin/users", func(admin chi.Router) {
				admin.Use(policy.Require(policy.AdminOnly, "users"))
				admin.Get("/", handlers.ListUsers(o.Identity, lg))
				admin.Post("/", handlers.CreateUser(o.Identity, lg))
				admin.Patch("/{id}", handlers.UpdateUser(o.Identity, lg))
				admin.Delete("/{id}", handlers.DeleteUser(o.Identity, lg))
			})
		})
	})

	return otelhttp.NewHandler(r, "autoparts-api",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
	)
}
