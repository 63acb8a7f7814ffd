// Package repository реализует доступ к коллекциям документного хранилища
// для доменных сущностей: пользователей и заметок.
package repository

import (
	"errors"
	"fmt"

	"github.com/magabrotheeeer/interview-api/internal/storage/docstore"
)

// ErrUserNotFound возвращается, когда пользователь отсутствует в хранилище.
var ErrUserNotFound = errors.New("user not found")

// Storage объединяет коллекции приложения поверх документного хранилища.
type Storage struct {
	users *docstore.Collection
	notes *docstore.Collection
}

// New открывает коллекции users и notes и объявляет уникальное ограничение
// на email: хранилище само не допускает двух учётных записей с одним адресом.
func New(store *docstore.Store) (*Storage, error) {
	const op = "repository.New"

	users, err := store.Collection("users")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	users.EnsureUnique("email")

	notes, err := store.Collection("notes")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{users: users, notes: notes}, nil
}
