// Package models содержит доменные модели системы: учётные записи пользователей
// и заметки к урокам. Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей в системе.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата создания учётной записи
	UpdatedAt    time.Time // Дата последнего обновления
}

// UserInfo — безопасная проекция пользователя для ответов API,
// без хэша пароля.
type UserInfo struct {
	UID       string    `json:"_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Info возвращает проекцию пользователя без чувствительных полей.
func (u *User) Info() UserInfo {
	return UserInfo{
		UID:       u.UID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
