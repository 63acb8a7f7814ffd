// Package interviewapi собирает приложение: хранилище, сервисы, маршруты и HTTP-сервер.
package interviewapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/interview-api/internal/config"
	"github.com/magabrotheeeer/interview-api/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/interview-api/internal/services/auth"
	noteservice "github.com/magabrotheeeer/interview-api/internal/services/note"
	"github.com/magabrotheeeer/interview-api/internal/storage/docstore"
	"github.com/magabrotheeeer/interview-api/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и документное хранилище приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	store  *docstore.Store
}

// New создает приложение: открывает хранилище, собирает сервисы и маршруты.
// Ошибка инициализации хранилища фатальна для запуска.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := docstore.New(cfg.DataDir, cfg.CompactionInterval, logger)
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(repo, jwtMaker)
	noteService := noteservice.NewNoteService(repo)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, noteService)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		store:  store,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста или ошибки сервера.
// При отмене контекста выполняется graceful shutdown и закрытие хранилища.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	}
}
