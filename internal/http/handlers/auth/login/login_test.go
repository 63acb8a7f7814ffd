package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/interview-api/internal/models"
	services "github.com/magabrotheeeer/interview-api/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*models.UserInfo, string, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.UserInfo)
	return user, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.UserInfo{UID: "uid-1", Email: "a@x.com", Role: "user"}

	tests := []struct {
		name           string
		requestBody    any
		mockUser       *models.UserInfo
		mockToken      string
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "a@x.com", Password: "pw123456"},
			mockUser:       user,
			mockToken:      "tok",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing email",
			requestBody:    Request{Password: "pw123456"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Email is a required field",
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Email: "a@x.com", Password: "wrong"},
			mockErr:        services.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Invalid email or password",
		},
		{
			name:           "internal error",
			requestBody:    Request{Email: "a@x.com", Password: "pw123456"},
			mockErr:        errors.New("io failure"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockUser != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Login", mock.Anything, req.Email, req.Password).
					Return(tt.mockUser, tt.mockToken, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, false, got["success"])
				assert.Equal(t, tt.wantError, got["error"])
				return
			}
			assert.Equal(t, true, got["success"])
			data, ok := got["data"].(map[string]any)
			assert.True(t, ok)
			assert.Equal(t, "tok", data["token"])

			serviceMock.AssertExpectations(t)
		})
	}
}
