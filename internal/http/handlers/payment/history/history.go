// Package history реализует HTTP-обработчик снимка платёжной информации:
// последний платёж и дата следующего списания по текущей подписке.
package history

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/taxai/account-service/internal/http/middlewarectx"
	"github.com/taxai/account-service/internal/http/response"
	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/models"
	"github.com/taxai/account-service/internal/services/lifecycle"
)

// Service описывает интерфейс бизнес-логики чтения платёжной информации.
type Service interface {
	GetProfile(ctx context.Context, email string) (*models.Account, error)
}

// Handler обрабатывает HTTP-запросы платёжной информации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Платёжная информация
// @Description Возвращает последний платёж и дату следующего списания по подписке. Если оплат ещё не было, payment равен null.
// @Tags Payment
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Платёжная информация"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, ok := r.Context().Value(middlewarectx.Email).(string)
	if !ok || email == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	account, err := h.service.GetProfile(r.Context(), email)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to get payment info", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription_type":   account.Subscription.Type,
		"subscription_status": account.Subscription.Status,
		"payment":             account.Subscription.Payment,
	}))
}
