package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/metascan/metascan-api/internal/application/dto"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
	"github.com/metascan/metascan-api/internal/domain/workflow"
)

// SlotUseCase motor da conferência: edição de campos gated por status,
// transições individuais guardadas e operações em massa.
type SlotUseCase struct {
	tx       TxRunner
	slotRepo repository.SlotRepository
	cavRepo  repository.CavaleteRepository
	lookup   ProductLookup
}

// NewSlotUseCase constrói o caso de uso.
func NewSlotUseCase(tx TxRunner, slotRepo repository.SlotRepository, cavRepo repository.CavaleteRepository, lookup ProductLookup) *SlotUseCase {
	return &SlotUseCase{tx: tx, slotRepo: slotRepo, cavRepo: cavRepo, lookup: lookup}
}

// GetByID devolve um slot. Conferente só enxerga slots dos cavaletes dele.
func (uc *SlotUseCase) GetByID(ctx context.Context, actor Actor, id string) (*dto.SlotResponse, error) {
	slot, err := uc.slotRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.checkOwnership(actor, slot.CavaleteID); err != nil {
		return nil, err
	}
	resp := toSlotResponse(slot)
	return &resp, nil
}

// UpdateFields edita produto/descrição/quantidade de um slot.
// Regras, na ordem: payload com status é rejeitado; quantidade negativa é
// rejeitada; troca de product_code dispara a consulta Sankhya e produto
// inexistente rejeita a edição inteira (o código não é gravado); dentro da
// transação a guarda exige status AUDITING, senão erro de validação nomeando o
// status atual. A linha UPDATE do histórico guarda valores pré e pós.
func (uc *SlotUseCase) UpdateFields(ctx context.Context, actor Actor, id string, in dto.UpdateSlotRequest) (*dto.SlotResponse, error) {
	if in.Status != nil {
		return nil, fmt.Errorf("%w: o status só pode ser alterado por ações específicas", domain.ErrValidation)
	}
	if in.ProductCode == nil && in.ProductDescription == nil && in.Quantity == nil {
		return nil, fmt.Errorf("%w: nada para atualizar", domain.ErrValidation)
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantidade deve ser não-negativa", domain.ErrValidation)
	}

	// Consulta Sankhya fora da transação: chamada bloqueante com retry próprio.
	var lookedUp *ProductInfo
	if in.ProductCode != nil && *in.ProductCode != "" {
		info, err := uc.lookup.Lookup(ctx, *in.ProductCode, actor.UserID)
		if err != nil {
			return nil, err
		}
		lookedUp = info
	}

	var updated *entity.Slot
	err := uc.tx.Run(ctx, func(_ repository.CavaleteRepository, slotRepo repository.SlotRepository, histRepo repository.HistoryRepository) error {
		slot, err := slotRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if slot == nil {
			return domain.ErrNotFound
		}
		if err := uc.checkOwnership(actor, slot.CavaleteID); err != nil {
			return err
		}
		if !workflow.CanEditFields(slot.Status) {
			return fmt.Errorf("%w: só é permitido atualizar produto com status AUDITING (atual: %s)",
				domain.ErrValidation, slot.Status)
		}

		oldCode := slot.ProductCode
		oldQty := slot.Quantity

		if in.ProductCode != nil {
			slot.ProductCode = in.ProductCode
			if lookedUp != nil {
				desc := lookedUp.Description
				slot.ProductDescription = &desc
			}
		}
		if in.ProductDescription != nil {
			slot.ProductDescription = in.ProductDescription
		}
		if in.Quantity != nil {
			slot.Quantity = *in.Quantity
		}
		slot.UpdatedAt = time.Now()
		if err := slotRepo.Update(slot); err != nil {
			return err
		}

		newQty := slot.Quantity
		h := newSlotHistory(slot, actor.UserID, entity.ActionUpdate, "")
		h.OldProductCode = oldCode
		h.NewProductCode = slot.ProductCode
		h.OldQuantity = &oldQty
		h.NewQuantity = &newQty
		if err := histRepo.AppendSlot(h); err != nil {
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toSlotResponse(updated)
	return &resp, nil
}

// StartAudit inicia a conferência (AVAILABLE -> AUDITING).
func (uc *SlotUseCase) StartAudit(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	return uc.transition(ctx, actor, id, entity.ActionStartAudit, "Conferência iniciada")
}

// FinishAudit encerra a conferência e aguarda aprovação (AUDITING -> AWAITING_APPROVAL).
func (uc *SlotUseCase) FinishAudit(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	return uc.transition(ctx, actor, id, entity.ActionFinishAudit, "Conferência finalizada, aguardando aprovação do gestor")
}

// Approve aprova a conferência (AWAITING_APPROVAL -> COMPLETED).
func (uc *SlotUseCase) Approve(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	return uc.transition(ctx, actor, id, entity.ActionApprove, "Conferência concluída")
}

// ReturnForRework devolve o slot ao conferente (AWAITING_APPROVAL -> AUDITING).
func (uc *SlotUseCase) ReturnForRework(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	return uc.transition(ctx, actor, id, entity.ActionReturn, "Conferência devolvida ao conferente")
}

// Reopen reabre um slot concluído (COMPLETED -> AUDITING).
func (uc *SlotUseCase) Reopen(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	return uc.transition(ctx, actor, id, entity.ActionReopen, "Conferência reaberta")
}

// transition executa uma transição individual: autorização por papel, lock da
// linha, guarda pela tabela e histórico com o snapshot resultante — tudo na
// mesma transação. Guarda reprovada não muta nem registra nada.
func (uc *SlotUseCase) transition(ctx context.Context, actor Actor, id string, action entity.Action, description string) (*dto.TransitionResponse, error) {
	if !workflow.CanTransition(actor.Role, action) {
		return nil, domain.ErrForbidden
	}

	var resulting entity.SlotStatus
	err := uc.tx.Run(ctx, func(_ repository.CavaleteRepository, slotRepo repository.SlotRepository, histRepo repository.HistoryRepository) error {
		slot, err := slotRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if slot == nil {
			return domain.ErrNotFound
		}
		if actor.Role == entity.RoleAuditor {
			if err := uc.checkOwnership(actor, slot.CavaleteID); err != nil {
				return err
			}
		}
		next, err := workflow.NextSlotStatus(slot.Status, action)
		if err != nil {
			return err
		}
		slot.Status = next
		slot.UpdatedAt = time.Now()
		if err := slotRepo.Update(slot); err != nil {
			return err
		}
		resulting = next
		return histRepo.AppendSlot(newSlotHistory(slot, actor.UserID, action, description))
	})
	if err != nil {
		return nil, err
	}
	return &dto.TransitionResponse{Status: string(resulting), Detail: description}, nil
}

// StartAll inicia a conferência de todos os slots AVAILABLE de um cavalete.
func (uc *SlotUseCase) StartAll(ctx context.Context, actor Actor, cavaleteID string) (*dto.BulkTransitionResponse, error) {
	return uc.bulkTransition(ctx, actor, cavaleteID, entity.ActionStartAudit, "Conferência iniciada em massa")
}

// FinishAll encerra a conferência de todos os slots AUDITING de um cavalete.
func (uc *SlotUseCase) FinishAll(ctx context.Context, actor Actor, cavaleteID string) (*dto.BulkTransitionResponse, error) {
	return uc.bulkTransition(ctx, actor, cavaleteID, entity.ActionFinishAudit, "Conferência encerrada em massa")
}

// ApproveAll aprova todos os slots AWAITING_APPROVAL de um cavalete.
func (uc *SlotUseCase) ApproveAll(ctx context.Context, actor Actor, cavaleteID string) (*dto.BulkTransitionResponse, error) {
	return uc.bulkTransition(ctx, actor, cavaleteID, entity.ActionApprove, "Conferência aprovada em massa")
}

// ReopenAll reabre todos os slots COMPLETED de um cavalete.
func (uc *SlotUseCase) ReopenAll(ctx context.Context, actor Actor, cavaleteID string) (*dto.BulkTransitionResponse, error) {
	return uc.bulkTransition(ctx, actor, cavaleteID, entity.ActionReopen, "Conferência reaberta em massa")
}

// bulkTransition transiciona todos os slots elegíveis do cavalete. O conjunto é
// o snapshot no momento da invocação; cada slot é escrito com compare-and-swap
// de status, então perder a corrida em um slot só o tira da contagem, não
// aborta o lote. Zero elegíveis é erro; cada slot transicionado gera sua
// própria linha de histórico.
func (uc *SlotUseCase) bulkTransition(ctx context.Context, actor Actor, cavaleteID string, action entity.Action, description string) (*dto.BulkTransitionResponse, error) {
	if !workflow.CanBulkTransition(actor.Role, action) {
		return nil, domain.ErrForbidden
	}
	if cavaleteID == "" {
		return nil, fmt.Errorf("%w: cavalete_id é obrigatório", domain.ErrValidation)
	}
	t, ok := workflow.SlotTransition(action)
	if !ok {
		return nil, fmt.Errorf("%w: ação %s não é uma transição de slot", domain.ErrValidation, action)
	}

	var count int
	err := uc.tx.Run(ctx, func(cavRepo repository.CavaleteRepository, slotRepo repository.SlotRepository, histRepo repository.HistoryRepository) error {
		cav, err := cavRepo.GetByID(cavaleteID)
		if err != nil {
			return err
		}
		if cav == nil {
			return domain.ErrNotFound
		}
		if actor.Role == entity.RoleAuditor {
			if cav.UserID == nil || *cav.UserID != actor.UserID {
				return domain.ErrForbidden
			}
		}
		eligible, err := slotRepo.ListByCavaleteAndStatus(cavaleteID, t.From)
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			return domain.ErrNoEligibleSlots
		}
		for i := range eligible {
			slot := eligible[i]
			won, err := slotRepo.UpdateStatus(slot.ID, t.From, t.To)
			if err != nil {
				return err
			}
			if !won {
				continue // outro escritor mudou o status depois do snapshot
			}
			slot.Status = t.To
			if err := histRepo.AppendSlot(newSlotHistory(&slot, actor.UserID, action, description)); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.BulkTransitionResponse{
		UpdatedCount: count,
		CavaleteID:   cavaleteID,
		Detail:       fmt.Sprintf("%d slots atualizados", count),
	}, nil
}

// checkOwnership garante que o conferente só opera nos cavaletes atribuídos a
// ele. Gestor e admin passam direto.
func (uc *SlotUseCase) checkOwnership(actor Actor, cavaleteID string) error {
	if actor.Role != entity.RoleAuditor {
		return nil
	}
	cav, err := uc.cavRepo.GetByID(cavaleteID)
	if err != nil {
		return err
	}
	if cav == nil {
		return domain.ErrNotFound
	}
	if cav.UserID == nil || *cav.UserID != actor.UserID {
		return domain.ErrForbidden
	}
	return nil
}

// newSlotHistory linha de histórico com o snapshot resultante do slot.
func newSlotHistory(slot *entity.Slot, userID string, action entity.Action, description string) *entity.SlotHistory {
	slotID := slot.ID
	return &entity.SlotHistory{
		ID:          uuid.New().String(),
		SlotID:      &slotID,
		UserID:      &userID,
		Action:      action,
		Timestamp:   time.Now(),
		Description: description,
		Status:      slot.Status,
	}
}

func toSlotResponse(s *entity.Slot) dto.SlotResponse {
	return dto.SlotResponse{
		ID:                 s.ID,
		CavaleteID:         s.CavaleteID,
		Side:               string(s.Side),
		Number:             s.Number,
		ProductCode:        s.ProductCode,
		ProductDescription: s.ProductDescription,
		Quantity:           s.Quantity,
		Status:             string(s.Status),
		UpdatedAt:          s.UpdatedAt,
	}
}
