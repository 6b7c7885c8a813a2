package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/application/dto"
)

// HistoryHandler leitura do histórico de auditoria (gestor/admin).
type HistoryHandler struct {
	uc *audit.HistoryUseCase
}

// NewHistoryHandler constrói o handler.
func NewHistoryHandler(uc *audit.HistoryUseCase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// ListCavaletes histórico de cavaletes, mais recente primeiro.
// Filtros: ?cavalete_id=, ?user_id=, ?action=, ?from=/?to= (RFC 3339), paginação limit/offset.
func (h *HistoryHandler) ListCavaletes(c *fiber.Ctx) error {
	q, err := parseHistoryQuery(c, "cavalete_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parâmetros de consulta inválidos"})
	}
	resp, err := h.uc.ListCavalete(c.Context(), GetActor(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListSlots histórico de slots, mais recente primeiro.
// Filtros: ?slot_id=, ?user_id=, ?action=, ?from=/?to= (RFC 3339), paginação limit/offset.
func (h *HistoryHandler) ListSlots(c *fiber.Ctx) error {
	q, err := parseHistoryQuery(c, "slot_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parâmetros de consulta inválidos"})
	}
	resp, err := h.uc.ListSlot(c.Context(), GetActor(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func parseHistoryQuery(c *fiber.Ctx, entityParam string) (audit.HistoryQuery, error) {
	var q audit.HistoryQuery
	if err := c.QueryParser(&q.Page); err != nil {
		return q, err
	}
	if v := c.Query(entityParam); v != "" {
		q.EntityID = &v
	}
	if v := c.Query("user_id"); v != "" {
		q.UserID = &v
	}
	if v := c.Query("action"); v != "" {
		q.Action = &v
	}
	if v := c.Query("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, err
		}
		q.From = &ts
	}
	if v := c.Query("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, err
		}
		q.To = &ts
	}
	return q, nil
}
