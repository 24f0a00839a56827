package consume

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/taxai/account-service/internal/http/middlewarectx"
	"github.com/taxai/account-service/internal/services/usage"
)

// MockService реализует интерфейс consume.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ConsumeMessage(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func TestConsumeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		email          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "успешное списание",
			email: "user@example.com",
			setupMock: func(m *MockService) {
				m.On("ConsumeMessage", mock.Anything, "user@example.com").Return(41, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"remaining_messages":41`,
		},
		{
			name:  "квота исчерпана",
			email: "user@example.com",
			setupMock: func(m *MockService) {
				m.On("ConsumeMessage", mock.Anything, "user@example.com").
					Return(0, usage.ErrQuotaExhausted)
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `message quota exhausted`,
		},
		{
			name:  "учётная запись не найдена",
			email: "ghost@example.com",
			setupMock: func(m *MockService) {
				m.On("ConsumeMessage", mock.Anything, "ghost@example.com").
					Return(0, usage.ErrAccountNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `account not found`,
		},
		{
			name:           "нет идентификации пользователя",
			email:          "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `user identification missing`,
		},
		{
			name:  "ошибка сервиса",
			email: "user@example.com",
			setupMock: func(m *MockService) {
				m.On("ConsumeMessage", mock.Anything, "user@example.com").
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `internal service error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/usage/consume", nil)
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
