// Package profile реализует HTTP-обработчик получения профиля текущего пользователя.
//
// Идентификатор пользователя берётся из контекста запроса, куда его помещает
// JWT middleware. Хэш пароля в ответ не попадает.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/interview-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/interview-api/internal/http/response"
	"github.com/magabrotheeeer/interview-api/internal/lib/sl"
	"github.com/magabrotheeeer/interview-api/internal/models"
	services "github.com/magabrotheeeer/interview-api/internal/services/auth"
)

// Service описывает интерфейс бизнес-логики получения профиля.
type Service interface {
	Profile(ctx context.Context, userUID string) (*models.UserInfo, error)
}

// Handler обрабатывает HTTP-запросы на получение профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("not authorized"))
		return
	}

	user, err := h.service.Profile(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			log.Error("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("User not found"))
			return
		}
		log.Error("failed to get profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Server error"))
		return
	}

	render.JSON(w, r, response.OK(user))
}
