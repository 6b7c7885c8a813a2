package audit

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
)

// nominalSlotsPerSide grade nominal do relatório: 6 posições por lado,
// posições ausentes saem como linhas vazias.
const nominalSlotsPerSide = 6

// ExportUseCase gera a planilha xlsx da conferência. Admin apenas.
type ExportUseCase struct {
	cavRepo  repository.CavaleteRepository
	slotRepo repository.SlotRepository
}

func NewExportUseCase(cavRepo repository.CavaleteRepository, slotRepo repository.SlotRepository) *ExportUseCase {
	return &ExportUseCase{cavRepo: cavRepo, slotRepo: slotRepo}
}

// Export monta a planilha: uma linha por (cavalete, lado, posição). Com
// cavaleteID vazio exporta todos os cavaletes. Devolve o conteúdo e o nome do
// arquivo sugerido.
func (uc *ExportUseCase) Export(_ context.Context, actor Actor, cavaleteID string) ([]byte, string, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, "", domain.ErrForbidden
	}

	var cavs []*entity.Cavalete
	filename := "cavaletes.xlsx"
	if cavaleteID != "" {
		cav, err := uc.cavRepo.GetByID(cavaleteID)
		if err != nil {
			return nil, "", err
		}
		if cav == nil {
			return nil, "", domain.ErrNotFound
		}
		cavs = []*entity.Cavalete{cav}
		filename = fmt.Sprintf("%s.xlsx", cav.Code)
	} else {
		all, err := uc.cavRepo.List(repository.CavaleteFilter{Limit: entity.MaxCavaletes})
		if err != nil {
			return nil, "", err
		}
		cavs = all
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Conferência"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Cavalete", "Lado", "Posição", "Código", "Descrição", "Quantidade", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", err
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "G1", style)
	}

	row := 2
	for _, cav := range cavs {
		slots, err := uc.slotRepo.ListByCavalete(cav.ID)
		if err != nil {
			return nil, "", err
		}
		bySide := map[entity.SlotSide]map[int]entity.Slot{
			entity.SideA: {},
			entity.SideB: {},
		}
		for _, s := range slots {
			bySide[s.Side][s.Number] = s
		}
		for _, side := range []entity.SlotSide{entity.SideA, entity.SideB} {
			for n := 1; n <= nominalSlotsPerSide; n++ {
				values := []interface{}{cav.Code, string(side), n, "", "", "", ""}
				if s, ok := bySide[side][n]; ok {
					code, desc := "", ""
					if s.ProductCode != nil {
						code = *s.ProductCode
					}
					if s.ProductDescription != nil {
						desc = *s.ProductDescription
					}
					values = []interface{}{cav.Code, string(side), n, code, desc, s.Quantity, string(s.Status)}
				}
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, row)
					if err := f.SetCellValue(sheet, cell, v); err != nil {
						return nil, "", err
					}
				}
				row++
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), filename, nil
}
