package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/taxai/account-service/internal/http/response"
	"github.com/taxai/account-service/internal/lib/sl"
)

// SubscriptionChecker определяет интерфейс проверки действия подписки.
type SubscriptionChecker interface {
	IsActive(ctx context.Context, email string) (bool, error)
}

// SubscriptionStatusMiddleware создает middleware, которое пропускает запрос
// только при действующей подписке учётной записи из контекста.
func SubscriptionStatusMiddleware(log *slog.Logger, checker SubscriptionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := r.Context().Value(Email).(string)
			if !ok || email == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			active, err := checker.IsActive(r.Context(), email)
			if err != nil {
				log.Error("failed to get subscription status", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !active {
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription is not active, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
