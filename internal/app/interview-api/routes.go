// Package interviewapi предоставляет маршруты для основного приложения.
package interviewapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "github.com/magabrotheeeer/interview-api/internal/http/handlers/api/admin"
	"github.com/magabrotheeeer/interview-api/internal/http/handlers/api/protected"
	"github.com/magabrotheeeer/interview-api/internal/http/handlers/api/status"
	"github.com/magabrotheeeer/interview-api/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/interview-api/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/interview-api/internal/http/handlers/auth/register"
	notebulk "github.com/magabrotheeeer/interview-api/internal/http/handlers/note/bulk"
	notecreate "github.com/magabrotheeeer/interview-api/internal/http/handlers/note/create"
	notelist "github.com/magabrotheeeer/interview-api/internal/http/handlers/note/list"
	"github.com/magabrotheeeer/interview-api/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/interview-api/internal/services/auth"
	noteservice "github.com/magabrotheeeer/interview-api/internal/services/note"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.AuthService, noteService *noteservice.NoteService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"message": "Welcome to the Interview API"})
	})

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", register.New(logger, authService).ServeHTTP)
			r.Post("/login", login.New(logger, authService).ServeHTTP)

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(authService, logger))
				r.Get("/profile", profile.New(logger, authService).ServeHTTP)
			})
		})

		r.Get("/status", status.New().ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/protected", protected.New().ServeHTTP)

			// Группа для администраторов
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))
				r.Get("/admin", adminhandler.New().ServeHTTP)
			})
		})
	})

	// Заметки открыты без аутентификации
	r.Post("/notes", notecreate.New(logger, noteService).ServeHTTP)
	r.Get("/notes/{userID}", notelist.New(logger, noteService).ServeHTTP)
	r.Post("/notes/bulk", notebulk.New(logger, noteService).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
}
