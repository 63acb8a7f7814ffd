// Package bulk реализует HTTP-обработчик пакетного создания заметок пользователя.
package bulk

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/interview-api/internal/http/response"
	"github.com/magabrotheeeer/interview-api/internal/lib/sl"
	services "github.com/magabrotheeeer/interview-api/internal/services/note"
)

// Request — входные данные для пакетного создания заметок
type Request struct {
	UserID string `json:"userId" validate:"required"`
	Notes  []Item `json:"notes" validate:"required,dive"`
}

// Item — одна заметка пакета
type Item struct {
	LessonID string `json:"lessonId" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// Service описывает интерфейс бизнес-логики пакетного создания заметок.
type Service interface {
	CreateBulk(ctx context.Context, userID string, items []services.BulkNote) error
}

// Handler обрабатывает HTTP-запросы на пакетное создание заметок.
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

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.bulk"

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
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	items := make([]services.BulkNote, 0, len(req.Notes))
	for _, note := range req.Notes {
		items = append(items, services.BulkNote{
			LessonID: note.LessonID,
			Content:  note.Content,
		})
	}

	if err := h.service.CreateBulk(r.Context(), req.UserID, items); err != nil {
		log.Error("bulk note creation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Bulk note creation failed"))
		return
	}

	log.Info("notes created", slog.Int("count", len(items)))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, map[string]string{"message": "Notes created successfully"})
}
