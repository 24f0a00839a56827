// Package requestverify реализует HTTP-обработчик запроса верификации email.
//
// В нём определяется структура Request для входных данных, выполняется
// декодирование JSON, валидация полей и делегирование операции сервису
// жизненного цикла учётной записи. Обработчик создаёт placeholder-запись
// при первом обращении и отправляет письмо со ссылкой подтверждения.
package requestverify

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

// Request — структура входных данных для запроса верификации.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс бизнес-логики запроса верификации.
type Service interface {
	RequestEmailVerification(ctx context.Context, email string) error
}

// Handler обрабатывает HTTP-запросы на отправку письма верификации.
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
// @Summary Запрос верификации email
// @Description Создаёт учётную запись-заглушку при первом обращении и отправляет письмо со ссылкой подтверждения. Повторная отправка доступна не чаще, чем раз в 60 секунд.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email для верификации"
// @Success 200 {object} response.Response "Письмо отправлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Email уже занят подтверждённой учётной записью"
// @Failure 429 {object} response.ErrorResponse "Повторная отправка слишком рано"
// @Failure 502 {object} response.ErrorResponse "Почтовый сервис недоступен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/send-verification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.requestverify"

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

	err := h.service.RequestEmailVerification(r.Context(), req.Email)
	if err != nil {
		var cooldownErr *lifecycle.CooldownError
		switch {
		case errors.Is(err, lifecycle.ErrEmailTaken):
			log.Info("email already registered", slog.String("email", req.Email))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email already registered"))
		case errors.As(err, &cooldownErr):
			log.Info("resend cooldown active", slog.Int("remaining_seconds", cooldownErr.RemainingSeconds))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error(cooldownErr.Error()))
		case errors.Is(err, lifecycle.ErrUpstreamUnavailable):
			log.Error("email delivery failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("failed to send verification email"))
		default:
			log.Error("failed to request verification", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("verification email requested", slog.String("email", req.Email))
	render.JSON(w, r, response.OK())
}
