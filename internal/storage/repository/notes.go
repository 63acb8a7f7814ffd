package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/interview-api/internal/models"
	"github.com/magabrotheeeer/interview-api/internal/storage/docstore"
)

// CreateNote сохраняет заметку и возвращает её с присвоенным ID.
func (s *Storage) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	const op = "repository.CreateNote"
	select {
	case <-ctx.Done():
		return models.Note{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	doc := docstore.Document{
		"userId":    note.UserID,
		"lessonId":  note.LessonID,
		"note":      note.Note,
		"createdAt": note.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	res, err := s.notes.InsertOne(ctx, doc)
	if err != nil {
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}
	note.UID = res.InsertedID
	return note, nil
}

// ListNotesByUser возвращает все заметки пользователя в порядке создания.
func (s *Storage) ListNotesByUser(ctx context.Context, userID string) ([]models.Note, error) {
	const op = "repository.ListNotesByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	cursor, err := s.notes.Find(ctx, docstore.Query{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]models.Note, 0)
	for _, doc := range cursor.All() {
		result = append(result, models.Note{
			UID:       stringField(doc, "_id"),
			UserID:    stringField(doc, "userId"),
			LessonID:  stringField(doc, "lessonId"),
			Note:      stringField(doc, "note"),
			CreatedAt: timeField(doc, "createdAt"),
		})
	}
	return result, nil
}
