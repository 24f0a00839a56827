// Package selectplan реализует HTTP-обработчик выбора тарифного плана.
//
// Пробный план активируется сразу, платные планы создаются в статусе pending
// и требуют подтверждения оплаты отдельным запросом.
package selectplan

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

// Request — структура входных данных для выбора плана.
type Request struct {
	PlanType string `json:"plan_type" validate:"required,oneof=trial monthly quarterly yearly"`
}

// Service описывает интерфейс бизнес-логики выбора плана.
type Service interface {
	SelectPlan(ctx context.Context, email string, planType models.SubscriptionType) (models.Subscription, bool, error)
}

// Handler обрабатывает HTTP-запросы выбора плана.
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
// @Summary Выбор тарифного плана
// @Description Заменяет подписку учётной записи выбранным планом. Триал активируется сразу и доступен один раз, платные планы остаются в статусе pending до подтверждения оплаты.
// @Tags Subscription
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор плана"
// @Success 200 {object} map[string]any "Подписка заменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестный план"
// @Failure 403 {object} response.ErrorResponse "Email не подтверждён или триал уже использован"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/select-plan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.selectplan"

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

	sub, requiresPayment, err := h.service.SelectPlan(r.Context(), email, models.SubscriptionType(req.PlanType))
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrInvalidPlan):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown subscription plan"))
		case errors.Is(err, lifecycle.ErrTrialAlreadyUsed):
			log.Info("trial already used", slog.String("email", email))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("trial already used"))
		case errors.Is(err, lifecycle.ErrEmailNotVerified):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("email not verified"))
		case errors.Is(err, lifecycle.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
		default:
			log.Error("failed to select plan", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("plan selected",
		slog.String("email", email),
		slog.String("plan_type", req.PlanType),
		slog.Bool("requires_payment", requiresPayment))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription":     sub,
		"requires_payment": requiresPayment,
	}))
}
