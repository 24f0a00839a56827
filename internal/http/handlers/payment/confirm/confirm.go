// Package confirm реализует HTTP-обработчик подтверждения оплаты.
//
// Статус платёжного намерения запрашивается у провайдера повторно, а не
// берётся из запроса клиента: подписка активируется только при статусе
// succeeded на стороне провайдера.
package confirm

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

// Request — структура входных данных для подтверждения оплаты.
type Request struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required,min=1"`
	PlanType        string `json:"plan_type" validate:"required,oneof=monthly quarterly yearly"`
}

// Service описывает интерфейс бизнес-логики подтверждения оплаты.
type Service interface {
	ConfirmPayment(ctx context.Context, email, paymentIntentID string, planType models.SubscriptionType) (models.Subscription, error)
}

// Handler обрабатывает HTTP-запросы подтверждения оплаты.
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
// @Summary Подтверждение оплаты
// @Description Проверяет статус платёжного намерения у провайдера и при успехе активирует подписку.
// @Tags Payment
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор платёжного намерения и план"
// @Success 200 {object} map[string]any "Подписка активирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 402 {object} response.ErrorResponse "Оплата не завершена"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 502 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.confirm"

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

	sub, err := h.service.ConfirmPayment(r.Context(), email, req.PaymentIntentID, models.SubscriptionType(req.PlanType))
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrPaymentNotCompleted):
			log.Info("payment not completed", slog.String("email", email))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("payment not completed"))
		case errors.Is(err, lifecycle.ErrInvalidPlan):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown subscription plan"))
		case errors.Is(err, lifecycle.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
		case errors.Is(err, lifecycle.ErrUpstreamUnavailable):
			log.Error("payment provider unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment provider unavailable"))
		default:
			log.Error("failed to confirm payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("payment confirmed, subscription activated",
		slog.String("email", email),
		slog.String("plan_type", req.PlanType))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": sub,
	}))
}
