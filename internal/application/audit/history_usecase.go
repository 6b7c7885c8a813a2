package audit

import (
	"context"
	"time"

	"github.com/metascan/metascan-api/internal/application/dto"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
	"github.com/metascan/metascan-api/internal/domain/workflow"
)

// HistoryUseCase leitura do histórico de auditoria. Restrito a gestor e admin.
type HistoryUseCase struct {
	histRepo repository.HistoryRepository
}

func NewHistoryUseCase(histRepo repository.HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{histRepo: histRepo}
}

// HistoryQuery parâmetros de consulta vindos do handler.
type HistoryQuery struct {
	EntityID *string
	UserID   *string
	Action   *string
	From     *time.Time
	To       *time.Time
	Page     dto.PageRequest
}

func (q *HistoryQuery) toFilter() (repository.HistoryFilter, error) {
	q.Page.DefaultPage()
	f := repository.HistoryFilter{
		EntityID: q.EntityID,
		UserID:   q.UserID,
		From:     q.From,
		To:       q.To,
		Limit:    q.Page.Limit,
		Offset:   q.Page.Offset,
	}
	if q.Action != nil && *q.Action != "" {
		a := entity.Action(*q.Action)
		if !a.Valid() {
			return f, domain.ErrValidation
		}
		f.Action = &a
	}
	return f, nil
}

// ListCavalete lista o histórico de cavaletes, mais recente primeiro.
func (uc *HistoryUseCase) ListCavalete(_ context.Context, actor Actor, q HistoryQuery) (*dto.CavaleteHistoryListResponse, error) {
	if !workflow.CanViewHistory(actor.Role) {
		return nil, domain.ErrForbidden
	}
	f, err := q.toFilter()
	if err != nil {
		return nil, err
	}
	rows, err := uc.histRepo.ListCavalete(f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CavaleteHistoryResponse, 0, len(rows))
	for _, h := range rows {
		items = append(items, dto.CavaleteHistoryResponse{
			ID:           h.ID,
			CavaleteID:   h.CavaleteID,
			UserID:       h.UserID,
			Action:       string(h.Action),
			Timestamp:    h.Timestamp,
			Description:  h.Description,
			PreviousData: h.PreviousData,
		})
	}
	return &dto.CavaleteHistoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

// ListSlot lista o histórico de slots, mais recente primeiro.
func (uc *HistoryUseCase) ListSlot(_ context.Context, actor Actor, q HistoryQuery) (*dto.SlotHistoryListResponse, error) {
	if !workflow.CanViewHistory(actor.Role) {
		return nil, domain.ErrForbidden
	}
	f, err := q.toFilter()
	if err != nil {
		return nil, err
	}
	rows, err := uc.histRepo.ListSlot(f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SlotHistoryResponse, 0, len(rows))
	for _, h := range rows {
		items = append(items, dto.SlotHistoryResponse{
			ID:             h.ID,
			SlotID:         h.SlotID,
			UserID:         h.UserID,
			Action:         string(h.Action),
			Timestamp:      h.Timestamp,
			Description:    h.Description,
			OldProductCode: h.OldProductCode,
			NewProductCode: h.NewProductCode,
			OldQuantity:    h.OldQuantity,
			NewQuantity:    h.NewQuantity,
			Status:         string(h.Status),
		})
	}
	return &dto.SlotHistoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}
