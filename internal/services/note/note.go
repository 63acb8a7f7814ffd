// Package services содержит логику бизнес-уровня для работы с заметками пользователей.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/interview-api/internal/models"
)

// NoteRepository описывает контракт для работы с заметками в хранилище.
type NoteRepository interface {
	// CreateNote сохраняет заметку и возвращает её с присвоенным ID.
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)

	// ListNotesByUser возвращает все заметки пользователя.
	ListNotesByUser(ctx context.Context, userID string) ([]models.Note, error)
}

// BulkNote — элемент пакетного создания заметок.
type BulkNote struct {
	LessonID string
	Content  string
}

// NoteService отвечает за создание и выборку заметок.
type NoteService struct {
	notes NoteRepository
}

// NewNoteService создает новый экземпляр NoteService.
func NewNoteService(notes NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

// Create сохраняет одну заметку пользователя к уроку.
func (s *NoteService) Create(ctx context.Context, userID, lessonID, text string) (models.Note, error) {
	const op = "services.note.Create"

	note := models.Note{
		UserID:    userID,
		LessonID:  lessonID,
		Note:      text,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.notes.CreateNote(ctx, note)
	if err != nil {
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// ListByUser возвращает все заметки пользователя в порядке создания.
func (s *NoteService) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	const op = "services.note.ListByUser"

	notes, err := s.notes.ListNotesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notes, nil
}

// CreateBulk последовательно сохраняет набор заметок пользователя.
func (s *NoteService) CreateBulk(ctx context.Context, userID string, items []BulkNote) error {
	const op = "services.note.CreateBulk"

	for _, item := range items {
		note := models.Note{
			UserID:    userID,
			LessonID:  item.LessonID,
			Note:      item.Content,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := s.notes.CreateNote(ctx, note); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
