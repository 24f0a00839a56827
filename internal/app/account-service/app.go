// Package accountservice собирает основной HTTP-сервис учётных записей:
// хранилище, кеш, почтовый транспорт, платёжный провайдер и маршруты.
package accountservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/taxai/account-service/internal/cache"
	"github.com/taxai/account-service/internal/config"
	"github.com/taxai/account-service/internal/lib/jwt"
	smtptransport "github.com/taxai/account-service/internal/lib/smtp"
	"github.com/taxai/account-service/internal/lib/token"
	"github.com/taxai/account-service/internal/migrations"
	"github.com/taxai/account-service/internal/paymentprovider"
	"github.com/taxai/account-service/internal/plans"
	lifecycleservice "github.com/taxai/account-service/internal/services/lifecycle"
	senderservice "github.com/taxai/account-service/internal/services/sender"
	usageservice "github.com/taxai/account-service/internal/services/usage"
	"github.com/taxai/account-service/internal/storage/repository"
)

// App представляет основной HTTP-сервис учётных записей.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает новый экземпляр App: подключает базу, применяет миграции,
// инициализирует кеш и собирает все сервисы с маршрутами.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	tokenIssuer := token.New()
	transport := smtptransport.NewTransport(cfg.SMTP, logger)
	emailSender := senderservice.New(transport, logger)
	provider := paymentprovider.New(cfg.ProviderAPIURL, cfg.ProviderSecretKey, cfg.ProviderTimeout)
	catalog := plans.NewCatalog()

	lifecycleService := lifecycleservice.New(db, tokenIssuer, emailSender, provider,
		jwtMaker, catalog, lifecycleservice.Options{
			PublicBaseURL:        cfg.PublicBaseURL,
			Currency:             cfg.Currency,
			RequireVerifiedLogin: cfg.RequireVerifiedLogin,
		}, logger)
	usageService := usageservice.New(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, lifecycleService, usageService, jwtMaker, catalog, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста,
// после чего останавливает сервер с таймаутом.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
