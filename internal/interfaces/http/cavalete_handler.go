package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/application/dto"
)

// CavaleteHandler trata o ciclo de vida dos cavaletes e o relatório xlsx.
type CavaleteHandler struct {
	uc     *audit.CavaleteUseCase
	export *audit.ExportUseCase
}

// NewCavaleteHandler constrói o handler.
func NewCavaleteHandler(uc *audit.CavaleteUseCase, export *audit.ExportUseCase) *CavaleteHandler {
	return &CavaleteHandler{uc: uc, export: export}
}

// Create godoc
// @Summary      Criar cavalete
// @Description  Código e nome são gerados pelo sistema; a estrutura de slots segue o tipo quando omitida.
// @Tags         cavaletes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCavaleteRequest  true  "type (CORRIDOR|TOWER), structure opcional {slots_a, slots_b}"
// @Success      201   {object}  dto.CavaleteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/cavaletes [post]
func (h *CavaleteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCavaleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resp, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List lista cavaletes (conferente vê só os atribuídos a ele).
// Filtros: ?status=, ?search= (código), paginação limit/offset.
func (h *CavaleteHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parâmetros de paginação inválidos"})
	}
	resp, err := h.uc.List(c.Context(), GetActor(c), c.Query("status"), c.Query("search"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetByID devolve o cavalete com slots e ocupação.
func (h *CavaleteHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Update atualização genérica (nome). Payload com status é rejeitado.
func (h *CavaleteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCavaleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resp, err := h.uc.Update(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Delete remove o cavalete (histórico sobrevive).
func (h *CavaleteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignUser atribui ou libera o conferente de um cavalete (admin).
func (h *CavaleteHandler) AssignUser(c *fiber.Ctx) error {
	var in dto.AssignUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resp, err := h.uc.AssignUser(c.Context(), GetActor(c), c.Params("id"), in.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Block coloca o cavalete em bloqueio administrativo (admin).
func (h *CavaleteHandler) Block(c *fiber.Ctx) error {
	resp, err := h.uc.SetBlocked(c.Context(), GetActor(c), c.Params("id"), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Unblock retira o bloqueio administrativo (admin).
func (h *CavaleteHandler) Unblock(c *fiber.Ctx) error {
	resp, err := h.uc.SetBlocked(c.Context(), GetActor(c), c.Params("id"), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// BulkAssign atribuição em massa (admin).
func (h *CavaleteHandler) BulkAssign(c *fiber.Ctx) error {
	var in dto.BulkAssignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resp, err := h.uc.BulkAssign(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Export godoc
// @Summary      Exportar conferência em xlsx
// @Tags         cavaletes
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        cavalete_id  query  string  false  "Restringe a um cavalete; vazio exporta todos"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/cavaletes/export [get]
func (h *CavaleteHandler) Export(c *fiber.Ctx) error {
	content, filename, err := h.export.Export(c.Context(), GetActor(c), c.Query("cavalete_id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(content)
}
