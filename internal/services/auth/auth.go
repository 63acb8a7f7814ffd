// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/interview-api/internal/lib/jwt"
	"github.com/magabrotheeeer/interview-api/internal/lib/password"
	"github.com/magabrotheeeer/interview-api/internal/models"
	"github.com/magabrotheeeer/interview-api/internal/storage/docstore"
	"github.com/magabrotheeeer/interview-api/internal/storage/repository"
)

var (
	// ErrUserExists возвращается при регистрации на уже занятый email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials возвращается при неверном email или пароле,
	// без уточнения, что именно неверно.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken возвращается для отсутствующего, просроченного или
	// некорректного токена, а также когда субъект токена больше не существует.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound возвращается, когда запрошенный пользователь отсутствует.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUser возвращает пользователя по его UID или ошибку, если не найден.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и проверку JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
// Возвращает проекцию пользователя и выпущенный токен.
//
// Повторная регистрация на тот же email отклоняется дважды: предварительной
// проверкой и уникальным ограничением хранилища на случай гонки.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (*models.UserInfo, string, error) {
	const op = "services.auth.Register"

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, "", fmt.Errorf("%s: %w", op, ErrUserExists)
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser, // дефолтная роль при регистрации
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	token, err := s.jwtMaker.GenerateToken(uid)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	info := user.Info()
	return &info, token, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Несуществующий email и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.UserInfo, string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	info := user.Info()
	return &info, token, nil
}

// Authenticate проверяет JWT и разрешает его субъекта в живую учётную запись.
// Токен с валидной подписью, но удалённым пользователем, отклоняется.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.UserInfo, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	info := user.Info()
	return &info, nil
}

// Profile возвращает проекцию пользователя по его UID.
func (s *AuthService) Profile(ctx context.Context, userUID string) (*models.UserInfo, error) {
	const op = "services.auth.Profile"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	info := user.Info()
	return &info, nil
}
