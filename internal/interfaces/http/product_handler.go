package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/application/dto"
)

// ProductHandler proxy de leitura da consulta de produtos na Sankhya.
type ProductHandler struct {
	lookup audit.ProductLookup
}

// NewProductHandler constrói o handler.
func NewProductHandler(lookup audit.ProductLookup) *ProductHandler {
	return &ProductHandler{lookup: lookup}
}

// GetByCode godoc
// @Summary      Consultar produto na Sankhya
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código do produto"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/products/{code} [get]
func (h *ProductHandler) GetByCode(c *fiber.Ctx) error {
	info, err := h.lookup.Lookup(c.Context(), c.Params("code"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductResponse{
		Code:              info.Code,
		Description:       info.Description,
		Brand:             info.Brand,
		SupplierReference: info.SupplierReference,
		Location:          info.Location,
		BasePrice:         info.BasePrice,
		Stock:             info.Stock,
		Unit:              info.Unit,
	})
}
