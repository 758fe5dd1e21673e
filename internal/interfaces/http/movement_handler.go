package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-api/internal/application/dto"
)

// MovementHandler maneja las peticiones HTTP de movimientos de stock (protegido).
type MovementHandler struct {
	uc MovementService
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc MovementService) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar movimiento de stock
// @Description  INBOUND suma, OUTBOUND resta y ADJUSTMENT fija la cantidad. Acepta los alias ENTRADA, SAIDA/SALIDA y AJUSTE.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "product_id, kind, quantity, note, user_id (opcional)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.RecordMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        kind        query  string  false  "INBOUND | OUTBOUND | ADJUSTMENT"
// @Param        product_id  query  string  false  "ID del producto"
// @Param        date_from   query  string  false  "Desde (YYYY-MM-DD, inclusivo)"
// @Param        date_to     query  string  false  "Hasta (YYYY-MM-DD, inclusivo)"
// @Param        search      query  string  false  "Texto en nombre de producto o nota"
// @Param        ordering    query  string  false  "created_at | quantity (prefijo - para descendente)"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200         {object}  dto.MovementListResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return respondError(c, errInvalidBody)
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
