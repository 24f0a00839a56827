// Package confirmverify реализует HTTP-обработчик подтверждения email по токену.
//
// Токен одноразовый: успешное подтверждение переводит учётную запись в стадию
// verified и выдаёт сессионный JWT, повторное использование того же токена
// отклоняется.
package confirmverify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/taxai/account-service/internal/http/response"
	"github.com/taxai/account-service/internal/lib/sl"
	"github.com/taxai/account-service/internal/services/lifecycle"
)

// Request — структура входных данных для подтверждения email.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,min=16"`
}

// Service описывает интерфейс бизнес-логики подтверждения email.
type Service interface {
	ConfirmEmailVerification(ctx context.Context, email, token string) (string, error)
}

// Handler обрабатывает HTTP-запросы подтверждения email.
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
// @Summary Подтверждение email
// @Description Подтверждает email по одноразовому токену из письма и возвращает сессионный JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и токен из письма"
// @Success 200 {object} map[string]any "Email подтверждён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверный токен"
// @Failure 410 {object} response.ErrorResponse "Токен истёк"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.confirmverify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	sessionToken, err := h.service.ConfirmEmailVerification(r.Context(), req.Email, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrTokenExpired):
			log.Info("verification token expired", slog.String("email", req.Email))
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error("verification token expired"))
		case errors.Is(err, lifecycle.ErrInvalidToken):
			log.Info("invalid verification token", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid verification token"))
		default:
			log.Error("failed to confirm verification", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("email verified", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": sessionToken,
	}))
}
