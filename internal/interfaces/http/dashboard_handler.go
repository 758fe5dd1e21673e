package http

import (
	"github.com/gofiber/fiber/v2"
)

// DashboardHandler maneja el endpoint de métricas agregadas.
type DashboardHandler struct {
	uc DashboardService
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc DashboardService) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Métricas del inventario
// @Description  Totales de productos y categorías, movimientos de hoy, productos con stock bajo y top 5 de los últimos 30 días.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
