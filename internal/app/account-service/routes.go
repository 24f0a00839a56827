// Package accountservice предоставляет маршруты основного приложения.
package accountservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taxai/account-service/docs"
	"github.com/taxai/account-service/internal/http/handlers/account/remove"
	"github.com/taxai/account-service/internal/http/handlers/auth/completeprofile"
	"github.com/taxai/account-service/internal/http/handlers/auth/confirmverify"
	"github.com/taxai/account-service/internal/http/handlers/auth/login"
	"github.com/taxai/account-service/internal/http/handlers/auth/requestverify"
	"github.com/taxai/account-service/internal/http/handlers/payment/confirm"
	"github.com/taxai/account-service/internal/http/handlers/payment/createintent"
	"github.com/taxai/account-service/internal/http/handlers/payment/history"
	profileget "github.com/taxai/account-service/internal/http/handlers/profile/get"
	profileupdate "github.com/taxai/account-service/internal/http/handlers/profile/update"
	"github.com/taxai/account-service/internal/http/handlers/subscription/health"
	planshandler "github.com/taxai/account-service/internal/http/handlers/subscription/plans"
	"github.com/taxai/account-service/internal/http/handlers/subscription/selectplan"
	usageconsume "github.com/taxai/account-service/internal/http/handlers/usage/consume"
	usageremaining "github.com/taxai/account-service/internal/http/handlers/usage/remaining"
	"github.com/taxai/account-service/internal/http/middlewarectx"
	"github.com/taxai/account-service/internal/lib/jwt"
	"github.com/taxai/account-service/internal/plans"
	lifecycleservice "github.com/taxai/account-service/internal/services/lifecycle"
	usageservice "github.com/taxai/account-service/internal/services/usage"
	"github.com/taxai/account-service/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	lifecycleService *lifecycleservice.Service, usageService *usageservice.Service,
	jwtMaker jwt.Maker, catalog plans.Catalog, db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(rate.Limit(50), 100)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/send-verification", requestverify.New(logger, lifecycleService).ServeHTTP)
		r.Post("/auth/verify-email", confirmverify.New(logger, lifecycleService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, lifecycleService).ServeHTTP)
		r.Get("/plans", planshandler.New(catalog).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Post("/auth/complete-profile", completeprofile.New(logger, lifecycleService).ServeHTTP)
			r.Get("/profile", profileget.New(logger, lifecycleService).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, lifecycleService).ServeHTTP)
			r.Post("/subscriptions/select-plan", selectplan.New(logger, lifecycleService).ServeHTTP)
			r.Post("/payments/intent", createintent.New(logger, lifecycleService).ServeHTTP)
			r.Post("/payments/confirm", confirm.New(logger, lifecycleService).ServeHTTP)
			r.Get("/payments/history", history.New(logger, lifecycleService).ServeHTTP)
			r.Get("/usage", usageremaining.New(logger, usageService).ServeHTTP)
			r.Delete("/accounts/{email}", remove.New(logger, lifecycleService).ServeHTTP)

			// Списание доступно только при действующей подписке.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.SubscriptionStatusMiddleware(logger, usageService))
				r.Post("/usage/consume", usageconsume.New(logger, usageService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
