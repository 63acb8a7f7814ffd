// Package create реализует HTTP-обработчик создания одной заметки пользователя.
//
// Успешный ответ — созданная заметка с присвоенным идентификатором.
package create

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
	"github.com/magabrotheeeer/interview-api/internal/models"
)

// Request — входные данные для создания заметки
type Request struct {
	UserID   string `json:"userId" validate:"required"`
	LessonID string `json:"lessonId" validate:"required"`
	Note     string `json:"note" validate:"required"`
}

// Service описывает интерфейс бизнес-логики создания заметки.
type Service interface {
	Create(ctx context.Context, userID, lessonID, text string) (models.Note, error)
}

// Handler обрабатывает HTTP-запросы на создание заметок.
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
	const op = "handlers.note.create"

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

	note, err := h.service.Create(r.Context(), req.UserID, req.LessonID, req.Note)
	if err != nil {
		log.Error("failed to create note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Failed to create note"))
		return
	}

	log.Info("note created", slog.String("id", note.UID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, note)
}
