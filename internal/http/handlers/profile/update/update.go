// Package update реализует HTTP-обработчик частичного обновления профиля:
// отсутствующие в запросе поля не меняются.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	profileget "github.com/taxai/account-service/internal/http/handlers/profile/get"
	"github.com/taxai/account-service/internal/http/middlewarectx"
	"github.com/taxai/account-service/internal/http/response"
	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/models"
	"github.com/taxai/account-service/internal/services/lifecycle"
)

// Request — структура входных данных для обновления профиля.
// nil-поля остаются без изменений.
type Request struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	JobTitle *string `json:"job_title" validate:"omitempty,max=100"`
	Language *string `json:"language" validate:"omitempty,min=2,max=10"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// Service описывает интерфейс бизнес-логики обновления профиля.
type Service interface {
	UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate, newPassword *string) (*models.Account, error)
}

// Handler обрабатывает HTTP-запросы обновления профиля.
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
// @Summary Обновление профиля
// @Description Частично обновляет имя, должность, язык интерфейса и пароль. Поля, отсутствующие в запросе, не меняются.
// @Tags Profile
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Изменяемые поля профиля"
// @Success 200 {object} map[string]any "Обновлённый профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 403 {object} response.ErrorResponse "Email не подтверждён"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.update"

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

	account, err := h.service.UpdateProfile(r.Context(), email, models.ProfileUpdate{
		Name:     req.Name,
		JobTitle: req.JobTitle,
		Language: req.Language,
	}, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrEmailNotVerified):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("email not verified"))
		case errors.Is(err, lifecycle.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
		default:
			log.Error("failed to update profile", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("profile updated", slog.String("email", email))
	render.JSON(w, r, response.OKWithData(profileget.ProfileView(account)))
}
