// Package consume реализует HTTP-обработчик списания одного сообщения из
// квоты подписки. Списание атомарно: конкурентные запросы не уводят остаток
// ниже нуля.
package consume

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
	"github.com/taxai/account-service/internal/services/usage"
)

// Service описывает интерфейс трекера квоты.
type Service interface {
	ConsumeMessage(ctx context.Context, email string) (int, error)
}

// Handler обрабатывает HTTP-запросы списания сообщения.
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
// @Summary Списание сообщения
// @Description Атомарно списывает одно сообщение из квоты и возвращает остаток. При исчерпанной квоте возвращает 429 без изменения состояния.
// @Tags Usage
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Остаток после списания"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 429 {object} response.ErrorResponse "Квота исчерпана"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /usage/consume [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.consume"

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

	remaining, err := h.service.ConsumeMessage(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, usage.ErrQuotaExhausted):
			log.Info("message quota exhausted", slog.String("email", email))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("message quota exhausted"))
		case errors.Is(err, usage.ErrAccountNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
		default:
			log.Error("failed to consume message", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"remaining_messages": remaining,
	}))
}
