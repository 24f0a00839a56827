// Package remove реализует HTTP-обработчик удаления учётной записи.
// Операция доступна только пользователям с ролью admin.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/taxai/account-service/internal/http/middlewarectx"
	"github.com/taxai/account-service/internal/http/response"
	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/services/lifecycle"
)

// Service описывает интерфейс бизнес-логики удаления учётной записи.
type Service interface {
	DeleteAccount(ctx context.Context, email string) error
}

// Handler обрабатывает HTTP-запросы удаления учётной записи.
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
// @Summary Удаление учётной записи
// @Description Удаляет учётную запись по email. Доступно только роли admin.
// @Tags Account
// @Security BearerAuth
// @Produce  json
// @Param email path string true "Email удаляемой учётной записи"
// @Success 200 {object} response.Response "Учётная запись удалена"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /accounts/{email} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, ok := r.Context().Value(middlewarectx.Role).(string)
	if !ok || role != "admin" {
		log.Error("access denied", slog.String("role", role))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("admin role required"))
		return
	}

	email := chi.URLParam(r, "email")
	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is required"))
		return
	}

	if err := h.service.DeleteAccount(r.Context(), email); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to delete account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("account deleted", slog.String("email", email))
	render.JSON(w, r, response.OK())
}
