// Package plans реализует HTTP-обработчик публичного списка тарифных планов.
package plans

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/taxai/account-service/internal/http/response"
	"github.com/taxai/account-service/internal/plans"
)

// Handler обрабатывает HTTP-запросы списка тарифных планов.
type Handler struct {
	catalog plans.Catalog
}

// New создает новый экземпляр Handler.
func New(catalog plans.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// ServeHTTP godoc
// @Summary Список тарифных планов
// @Description Возвращает все тарифные планы с квотами, длительностью и ценой.
// @Tags Subscription
// @Produce  json
// @Success 200 {object} map[string]any "Список планов"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans": h.catalog.List(),
	}))
}
