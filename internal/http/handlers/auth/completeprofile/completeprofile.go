// Package completeprofile реализует HTTP-обработчик заполнения профиля
// после подтверждения email: имя, должность и пароль.
package completeprofile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/taxai/account-service/internal/http/middlewarectx"
	"github.com/taxai/account-service/internal/http/response"
	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/services/lifecycle"
)

// Request — структура входных данных для заполнения профиля.
type Request struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	JobTitle string `json:"job_title" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Service описывает интерфейс бизнес-логики заполнения профиля.
type Service interface {
	CompleteProfile(ctx context.Context, email, name, jobTitle, rawPassword string) error
}

// Handler обрабатывает HTTP-запросы заполнения профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Заполнение профиля
// @Description Записывает имя, должность и пароль подтверждённой учётной записи. Email берётся из JWT.
// @Tags Auth
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные профиля"
// @Success 200 {object} response.Response "Профиль заполнен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Email не подтверждён"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/complete-profile [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.completeprofile"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.CompleteProfile(r.Context(), email, req.Name, req.JobTitle, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrEmailNotVerified):
			log.Info("email not verified", slog.String("email", email))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("email not verified"))
		case errors.Is(err, lifecycle.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
		default:
			log.Error("failed to complete profile", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("profile completed", slog.String("email", email))
	render.JSON(w, r, response.OK())
}
