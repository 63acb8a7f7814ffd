// Package list реализует HTTP-обработчик выборки всех заметок пользователя.
//
// Успешный ответ — массив заметок; у пользователя без заметок он пуст.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/interview-api/internal/http/response"
	"github.com/magabrotheeeer/interview-api/internal/lib/sl"
	"github.com/magabrotheeeer/interview-api/internal/models"
)

// Service описывает интерфейс бизнес-логики выборки заметок.
type Service interface {
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
}

// Handler обрабатывает HTTP-запросы на выборку заметок пользователя.
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
	const op = "handlers.note.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		log.Error("userID is missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("userID is required"))
		return
	}

	notes, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to fetch notes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Failed to fetch notes"))
		return
	}

	render.JSON(w, r, notes)
}
