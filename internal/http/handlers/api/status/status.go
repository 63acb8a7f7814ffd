// Package status реализует открытый обработчик проверки работоспособности API.
package status

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/interview-api/internal/http/response"
)

// Handler отвечает текущим статусом API и временем сервера.
type Handler struct{}

// New создает новый экземпляр Handler.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OK(map[string]any{
		"status": "API is running",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}))
}
