package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/interview-api/internal/models"
	"github.com/magabrotheeeer/interview-api/internal/storage/docstore"
)

// RegisterUser сохраняет нового пользователя в хранилище и возвращает его ID.
// Нарушение уникальности email возвращается как docstore.ErrDuplicateKey.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "repository.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	doc := docstore.Document{
		"email":     user.Email,
		"password":  user.PasswordHash,
		"role":      user.Role,
		"createdAt": user.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": user.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return res.InsertedID, nil
}

// GetUserByEmail возвращает пользователя по email или ErrUserNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "repository.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	doc, err := s.users.FindOne(ctx, docstore.Query{"email": email})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return decodeUser(doc), nil
}

// GetUser возвращает пользователя по его UID или ErrUserNotFound.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "repository.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	doc, err := s.users.FindOne(ctx, docstore.Query{"_id": userUID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return decodeUser(doc), nil
}

func decodeUser(doc docstore.Document) *models.User {
	u := &models.User{
		UID:          stringField(doc, "_id"),
		Email:        stringField(doc, "email"),
		PasswordHash: stringField(doc, "password"),
		Role:         stringField(doc, "role"),
	}
	u.CreatedAt = timeField(doc, "createdAt")
	u.UpdatedAt = timeField(doc, "updatedAt")
	return u
}

func stringField(doc docstore.Document, field string) string {
	value, _ := doc[field].(string)
	return value
}

func timeField(doc docstore.Document, field string) time.Time {
	raw, _ := doc[field].(string)
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
