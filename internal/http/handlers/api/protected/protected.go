// Package protected реализует демонстрационный обработчик, доступный
// только аутентифицированным пользователям.
package protected

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/interview-api/internal/http/response"
)

// Handler отвечает аутентифицированному пользователю временем сервера.
type Handler struct{}

// New создает новый экземпляр Handler.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithMessage("You have access to protected data", map[string]any{
		"time": time.Now().UTC().Format(time.RFC3339),
	}))
}
