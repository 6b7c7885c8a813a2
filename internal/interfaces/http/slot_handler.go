package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/application/dto"
)

// SlotHandler trata edição de slots e as ações do fluxo de conferência.
type SlotHandler struct {
	uc *audit.SlotUseCase
}

// NewSlotHandler constrói o handler.
func NewSlotHandler(uc *audit.SlotUseCase) *SlotHandler {
	return &SlotHandler{uc: uc}
}

// GetByID devolve um slot.
func (h *SlotHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary      Editar campos de produto de um slot
// @Description  Permitido só com o slot em AUDITING. Troca de product_code consulta a Sankhya; produto inexistente rejeita a edição. Payload com status é rejeitado.
// @Tags         slots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID do slot"
// @Param        body  body  dto.UpdateSlotRequest  true  "product_code, product_description, quantity"
// @Success      200   {object}  dto.SlotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/slots/{id} [put]
func (h *SlotHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSlotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resp, err := h.uc.UpdateFields(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Transições individuais do slot. Cada uma valida a guarda dentro da transação.
func (h *SlotHandler) StartAudit(c *fiber.Ctx) error {
	return h.transition(c, h.uc.StartAudit)
}

func (h *SlotHandler) FinishAudit(c *fiber.Ctx) error {
	return h.transition(c, h.uc.FinishAudit)
}

func (h *SlotHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Approve)
}

func (h *SlotHandler) Return(c *fiber.Ctx) error {
	return h.transition(c, h.uc.ReturnForRework)
}

func (h *SlotHandler) Reopen(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Reopen)
}

func (h *SlotHandler) transition(c *fiber.Ctx, fn func(context.Context, audit.Actor, string) (*dto.TransitionResponse, error)) error {
	resp, err := fn(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Operações em massa: transicionam todos os slots elegíveis do cavalete do corpo.
func (h *SlotHandler) StartAll(c *fiber.Ctx) error {
	return h.bulk(c, h.uc.StartAll)
}

func (h *SlotHandler) FinishAll(c *fiber.Ctx) error {
	return h.bulk(c, h.uc.FinishAll)
}

func (h *SlotHandler) ApproveAll(c *fiber.Ctx) error {
	return h.bulk(c, h.uc.ApproveAll)
}

func (h *SlotHandler) ReopenAll(c *fiber.Ctx) error {
	return h.bulk(c, h.uc.ReopenAll)
}

func (h *SlotHandler) bulk(c *fiber.Ctx, fn func(context.Context, audit.Actor, string) (*dto.BulkTransitionResponse, error)) error {
	var in dto.BulkTransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resp, err := fn(c.Context(), GetActor(c), in.CavaleteID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
