package selectplan

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/taxai/account-service/internal/http/middlewarectx"
	"github.com/taxai/account-service/internal/models"
	"github.com/taxai/account-service/internal/services/lifecycle"
)

// MockService реализует интерфейс selectplan.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SelectPlan(ctx context.Context, email string, planType models.SubscriptionType) (models.Subscription, bool, error) {
	args := m.Called(ctx, email, planType)
	return args.Get(0).(models.Subscription), args.Bool(1), args.Error(2)
}

func TestSelectPlanHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	now := time.Now().UTC()
	trialSub := models.Subscription{
		Type:              models.SubscriptionTrial,
		Status:            models.StatusActive,
		MessageLimit:      50,
		RemainingMessages: 50,
		CallSeconds:       300,
		StartDate:         now,
		EndDate:           now.Add(14 * 24 * time.Hour),
	}

	tests := []struct {
		name           string
		body           string
		email          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "активация триала",
			body:  `{"plan_type":"trial"}`,
			email: "user@example.com",
			setupMock: func(m *MockService) {
				m.On("SelectPlan", mock.Anything, "user@example.com", models.SubscriptionTrial).
					Return(trialSub, false, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"requires_payment":false`,
		},
		{
			name:  "платный план требует оплаты",
			body:  `{"plan_type":"monthly"}`,
			email: "user@example.com",
			setupMock: func(m *MockService) {
				sub := trialSub
				sub.Type = models.SubscriptionMonthly
				sub.Status = models.StatusPending
				m.On("SelectPlan", mock.Anything, "user@example.com", models.SubscriptionMonthly).
					Return(sub, true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"requires_payment":true`,
		},
		{
			name:           "неизвестный план не проходит валидацию",
			body:           `{"plan_type":"lifetime"}`,
			email:          "user@example.com",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field PlanType`,
		},
		{
			name:           "нет идентификации пользователя",
			body:           `{"plan_type":"trial"}`,
			email:          "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `user identification missing`,
		},
		{
			name:  "триал уже использован",
			body:  `{"plan_type":"trial"}`,
			email: "user@example.com",
			setupMock: func(m *MockService) {
				m.On("SelectPlan", mock.Anything, "user@example.com", models.SubscriptionTrial).
					Return(models.Subscription{}, false, lifecycle.ErrTrialAlreadyUsed)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `trial already used`,
		},
		{
			name:  "email не подтверждён",
			body:  `{"plan_type":"monthly"}`,
			email: "user@example.com",
			setupMock: func(m *MockService) {
				m.On("SelectPlan", mock.Anything, "user@example.com", models.SubscriptionMonthly).
					Return(models.Subscription{}, false, lifecycle.ErrEmailNotVerified)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `email not verified`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/select-plan", strings.NewReader(tt.body))
			if tt.email != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Email, tt.email))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
