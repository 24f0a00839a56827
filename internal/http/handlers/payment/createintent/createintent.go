// Package createintent реализует HTTP-обработчик создания платёжного
// намерения у внешнего провайдера. Возвращает clientSecret для завершения
// оплаты на стороне клиента.
package createintent

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
	"github.com/taxai/account-service/internal/models"
	"github.com/taxai/account-service/internal/services/lifecycle"
)

// Request — структура входных данных для создания платёжного намерения.
type Request struct {
	PlanType string `json:"plan_type" validate:"required,oneof=monthly quarterly yearly"`
}

// Service описывает интерфейс бизнес-логики создания платёжного намерения.
type Service interface {
	CreatePaymentIntent(ctx context.Context, email string, planType models.SubscriptionType) (string, error)
}

// Handler обрабатывает HTTP-запросы создания платёжного намерения.
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
// @Summary Создание платёжного намерения
// @Description Создаёт платёжное намерение у провайдера на сумму выбранного плана и возвращает clientSecret.
// @Tags Payment
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор платного плана"
// @Success 200 {object} map[string]any "clientSecret платёжного намерения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неплатный план"
// @Failure 502 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/intent [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.createintent"

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

	clientSecret, err := h.service.CreatePaymentIntent(r.Context(), email, models.SubscriptionType(req.PlanType))
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrInvalidPlan):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("plan is not payable"))
		case errors.Is(err, lifecycle.ErrUpstreamUnavailable):
			log.Error("payment provider unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment provider unavailable"))
		default:
			log.Error("failed to create payment intent", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("payment intent created", slog.String("email", email), slog.String("plan_type", req.PlanType))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"client_secret": clientSecret,
	}))
}
