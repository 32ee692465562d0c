package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/rota-backend-go/internal/config"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	JWTService jwt.Service,
	resolver membership.Resolver,
	timesheetHandler TimesheetHandler,
	completionHandler CompletionHandler,
	reportHandler ReportHandler,
	catalogHandler CatalogHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.ResolveActor(resolver))

			r.Route("/timesheets", func(r chi.Router) {
				r.Post("/", timesheetHandler.GetOrCreate)
				r.Post("/approvals", timesheetHandler.ApproveSite)
				r.Delete("/entries/{entryID}", timesheetHandler.DeleteEntry)

				r.Route("/month", func(r chi.Router) {
					r.Get("/", timesheetHandler.GetMonthView)
					r.Post("/entries", timesheetHandler.AddMonthEntry)
					r.Post("/submit", timesheetHandler.SubmitMonth)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", timesheetHandler.Get)
					r.Delete("/", timesheetHandler.Delete)
					r.Put("/entries/{day}", timesheetHandler.UpsertEntry)
					r.Post("/autofill", timesheetHandler.Autofill)
					r.Post("/return", timesheetHandler.Return)
					r.Get("/mismatches", timesheetHandler.Mismatches)
					r.Get("/mismatches/export", reportHandler.ExportDiscrepancy)
				})
			})

			r.Route("/completion", func(r chi.Router) {
				r.Get("/sites/{siteID}", completionHandler.SiteProgress)
				r.Get("/organization", completionHandler.OrganizationProgress)
				r.Get("/organization/export", reportHandler.ExportCompletion)
			})

			r.Get("/shift-catalog", catalogHandler.List)
		})
	})
	return r
}
