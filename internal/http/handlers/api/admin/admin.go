// Package admin реализует демонстрационный обработчик, доступный
// только пользователям с ролью admin.
package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/interview-api/internal/http/response"
)

// Handler отвечает администратору временем сервера.
type Handler struct{}

// New создает новый экземпляр Handler.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithMessage("You have admin access", map[string]any{
		"time": time.Now().UTC().Format(time.RFC3339),
	}))
}
