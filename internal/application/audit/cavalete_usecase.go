package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/metascan/metascan-api/internal/application/dto"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
	"github.com/metascan/metascan-api/internal/domain/workflow"
)

// CavaleteUseCase operações de ciclo de vida do cavalete: criação com geração
// de estrutura, atualização, exclusão auditada, atribuição e listagem escopada.
type CavaleteUseCase struct {
	tx       TxRunner
	cavRepo  repository.CavaleteRepository
	slotRepo repository.SlotRepository
	userRepo repository.UserRepository
}

// NewCavaleteUseCase constrói o caso de uso.
func NewCavaleteUseCase(tx TxRunner, cavRepo repository.CavaleteRepository, slotRepo repository.SlotRepository, userRepo repository.UserRepository) *CavaleteUseCase {
	return &CavaleteUseCase{tx: tx, cavRepo: cavRepo, slotRepo: slotRepo, userRepo: userRepo}
}

// Create cria um cavalete com código sequencial, nome padrão e estrutura de
// slots, tudo em uma transação com a linha CREATE do histórico.
// O limite global de cavaletes é verificado dentro da transação.
func (uc *CavaleteUseCase) Create(ctx context.Context, actor Actor, in dto.CreateCavaleteRequest) (*dto.CavaleteResponse, error) {
	if !workflow.CanManageCavaletes(actor.Role) {
		return nil, domain.ErrForbidden
	}

	cavType := entity.CavaleteCorridor
	switch in.Type {
	case "", string(entity.CavaleteCorridor):
	case string(entity.CavaleteTower):
		cavType = entity.CavaleteTower
	default:
		return nil, fmt.Errorf("%w: tipo de cavalete desconhecido: %s", domain.ErrValidation, in.Type)
	}
	if in.Structure != nil && (in.Structure.SlotsA < 0 || in.Structure.SlotsB < 0) {
		return nil, fmt.Errorf("%w: quantidades de slots devem ser não-negativas", domain.ErrValidation)
	}

	now := time.Now()
	cav := &entity.Cavalete{
		ID:        uuid.New().String(),
		Type:      cavType,
		Status:    entity.CavaleteAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := uc.tx.Run(ctx, func(cavRepo repository.CavaleteRepository, slotRepo repository.SlotRepository, histRepo repository.HistoryRepository) error {
		count, err := cavRepo.Count()
		if err != nil {
			return err
		}
		if count >= entity.MaxCavaletes {
			return domain.ErrCavaleteLimit
		}
		lastCode, err := cavRepo.LastCode()
		if err != nil {
			return err
		}
		cav.Code = entity.NextCode(lastCode)
		cav.Name = entity.DefaultName(cav.Code)

		if err := cavRepo.Create(cav); err != nil {
			return err
		}
		slots := buildStructure(cav, in.Structure, now)
		if err := slotRepo.CreateBatch(slots); err != nil {
			return err
		}
		return histRepo.AppendCavalete(newCavaleteHistory(cav.ID, actor.UserID, entity.ActionCreate, "Cavalete "+cav.Code+" criado", nil))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(cav, true)
}

// buildStructure monta os slots do cavalete: estrutura explícita do chamador ou
// a padrão do tipo (6x2 corredor, 12 torre).
func buildStructure(cav *entity.Cavalete, structure *dto.StructureRequest, now time.Time) []*entity.Slot {
	slotsA, slotsB := cav.DefaultStructure()
	if structure != nil {
		slotsA, slotsB = structure.SlotsA, structure.SlotsB
	}
	slots := make([]*entity.Slot, 0, slotsA+slotsB)
	for i := 1; i <= slotsA; i++ {
		slots = append(slots, newSlot(cav.ID, entity.SideA, i, now))
	}
	for i := 1; i <= slotsB; i++ {
		slots = append(slots, newSlot(cav.ID, entity.SideB, i, now))
	}
	return slots
}

func newSlot(cavaleteID string, side entity.SlotSide, number int, now time.Time) *entity.Slot {
	return &entity.Slot{
		ID:         uuid.New().String(),
		CavaleteID: cavaleteID,
		Side:       side,
		Number:     number,
		Status:     entity.SlotAvailable,
		UpdatedAt:  now,
	}
}

// GetByID devolve o cavalete com slots e ocupação. Conferente só enxerga os dele.
func (uc *CavaleteUseCase) GetByID(ctx context.Context, actor Actor, id string) (*dto.CavaleteResponse, error) {
	cav, err := uc.cavRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cav == nil {
		return nil, domain.ErrNotFound
	}
	if !workflow.CanViewCavalete(actor.Role, actor.UserID, cav) {
		return nil, domain.ErrForbidden
	}
	return uc.toResponse(cav, true)
}

// List lista cavaletes com filtro de status e busca por código.
// Para conferentes o escopo é restrito aos cavaletes atribuídos a eles.
func (uc *CavaleteUseCase) List(ctx context.Context, actor Actor, status, search string, page dto.PageRequest) (*dto.CavaleteListResponse, error) {
	page.DefaultPage()
	f := repository.CavaleteFilter{Search: search, Limit: page.Limit, Offset: page.Offset}
	if status != "" {
		s := entity.CavaleteStatus(status)
		f.Status = &s
	}
	if actor.Role == entity.RoleAuditor {
		uid := actor.UserID
		f.UserID = &uid
	}
	list, err := uc.cavRepo.List(f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CavaleteResponse, 0, len(list))
	for _, cav := range list {
		resp, err := uc.toResponse(cav, true)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return &dto.CavaleteListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update atualiza campos genéricos do cavalete (nome). Payload com status é
// rejeitado antes de qualquer mutação: status só muda por assign/release/block.
func (uc *CavaleteUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateCavaleteRequest) (*dto.CavaleteResponse, error) {
	if !workflow.CanManageCavaletes(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if in.Status != nil {
		return nil, fmt.Errorf("%w: o status só pode ser alterado por ações específicas", domain.ErrValidation)
	}

	var updated *entity.Cavalete
	err := uc.tx.Run(ctx, func(cavRepo repository.CavaleteRepository, _ repository.SlotRepository, histRepo repository.HistoryRepository) error {
		cav, err := cavRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if cav == nil {
			return domain.ErrNotFound
		}
		prev := snapshotJSON(cav)
		if in.Name != nil {
			cav.Name = *in.Name
		}
		cav.UpdatedAt = time.Now()
		if err := cavRepo.Update(cav); err != nil {
			return err
		}
		updated = cav
		return histRepo.AppendCavalete(newCavaleteHistory(cav.ID, actor.UserID, entity.ActionUpdate, "", prev))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(updated, false)
}

// Delete remove o cavalete registrando antes a linha DELETE com o snapshot
// anterior; os slots caem em cascata e o histórico sobrevive com FK nula.
func (uc *CavaleteUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	if !workflow.CanManageCavaletes(actor.Role) {
		return domain.ErrForbidden
	}
	return uc.tx.Run(ctx, func(cavRepo repository.CavaleteRepository, _ repository.SlotRepository, histRepo repository.HistoryRepository) error {
		cav, err := cavRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if cav == nil {
			return domain.ErrNotFound
		}
		h := newCavaleteHistory(cav.ID, actor.UserID, entity.ActionDelete, "Cavalete "+cav.Code+" excluído", snapshotJSON(cav))
		if err := histRepo.AppendCavalete(h); err != nil {
			return err
		}
		return cavRepo.Delete(id)
	})
}

// AssignUser atribui um conferente (status ASSIGNED) ou libera o cavalete
// (user nulo, status AVAILABLE). Cavalete BLOCKED fica fora da atribuição.
func (uc *CavaleteUseCase) AssignUser(ctx context.Context, actor Actor, id string, userID *string) (*dto.CavaleteResponse, error) {
	if !workflow.CanAssign(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if userID != nil {
		user, err := uc.userRepo.GetByID(*userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, domain.ErrUserNotFound
		}
	}

	var updated *entity.Cavalete
	err := uc.tx.Run(ctx, func(cavRepo repository.CavaleteRepository, _ repository.SlotRepository, histRepo repository.HistoryRepository) error {
		cav, err := cavRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if cav == nil {
			return domain.ErrNotFound
		}
		if err := applyAssignment(cav, userID, actor.UserID, histRepo); err != nil {
			return err
		}
		if err := cavRepo.Update(cav); err != nil {
			return err
		}
		updated = cav
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(updated, false)
}

// BulkAssign atribui (ou libera) vários cavaletes de uma vez, com uma linha de
// histórico por cavalete, tudo em uma transação.
func (uc *CavaleteUseCase) BulkAssign(ctx context.Context, actor Actor, in dto.BulkAssignRequest) (*dto.BulkAssignResponse, error) {
	if !workflow.CanAssign(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if len(in.CavaleteIDs) == 0 {
		return nil, fmt.Errorf("%w: informe uma lista de IDs de cavaletes", domain.ErrValidation)
	}
	if in.UserID != nil {
		user, err := uc.userRepo.GetByID(*in.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, domain.ErrUserNotFound
		}
	}

	err := uc.tx.Run(ctx, func(cavRepo repository.CavaleteRepository, _ repository.SlotRepository, histRepo repository.HistoryRepository) error {
		for _, id := range in.CavaleteIDs {
			cav, err := cavRepo.GetByIDForUpdate(id)
			if err != nil {
				return err
			}
			if cav == nil {
				return fmt.Errorf("%w: cavalete %s", domain.ErrNotFound, id)
			}
			if err := applyAssignment(cav, in.UserID, actor.UserID, histRepo); err != nil {
				return err
			}
			if err := cavRepo.Update(cav); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.BulkAssignResponse{CavaleteIDs: in.CavaleteIDs, UserID: in.UserID}, nil
}

// SetBlocked coloca ou retira o cavalete do bloqueio administrativo. Cavalete
// atribuído precisa ser liberado antes de bloquear; o bloqueio o exclui da
// atribuição até o desbloqueio.
func (uc *CavaleteUseCase) SetBlocked(ctx context.Context, actor Actor, id string, blocked bool) (*dto.CavaleteResponse, error) {
	if !workflow.CanAssign(actor.Role) {
		return nil, domain.ErrForbidden
	}

	var updated *entity.Cavalete
	err := uc.tx.Run(ctx, func(cavRepo repository.CavaleteRepository, _ repository.SlotRepository, histRepo repository.HistoryRepository) error {
		cav, err := cavRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if cav == nil {
			return domain.ErrNotFound
		}
		prev := snapshotJSON(cav)
		action := entity.ActionUnblock
		description := "Bloqueio removido"
		switch {
		case blocked && cav.Status == entity.CavaleteAssigned:
			return fmt.Errorf("%w: libere o cavalete %s antes de bloquear", domain.ErrValidation, cav.Code)
		case blocked && cav.Status == entity.CavaleteBlocked:
			return fmt.Errorf("%w: cavalete %s já está bloqueado", domain.ErrValidation, cav.Code)
		case !blocked && cav.Status != entity.CavaleteBlocked:
			return fmt.Errorf("%w: cavalete %s não está bloqueado", domain.ErrValidation, cav.Code)
		case blocked:
			action = entity.ActionBlock
			description = "Bloqueio administrativo"
			cav.Status = entity.CavaleteBlocked
		default:
			cav.Status = entity.CavaleteAvailable
		}
		cav.UpdatedAt = time.Now()
		if err := cavRepo.Update(cav); err != nil {
			return err
		}
		updated = cav
		return histRepo.AppendCavalete(newCavaleteHistory(cav.ID, actor.UserID, action, description, prev))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(updated, false)
}

// applyAssignment muda user/status do cavalete e anexa a linha ASSIGN/RELEASE
// com o snapshot anterior. O chamador persiste o cavalete.
func applyAssignment(cav *entity.Cavalete, userID *string, actorID string, histRepo repository.HistoryRepository) error {
	if cav.Status == entity.CavaleteBlocked {
		return fmt.Errorf("%w: cavalete %s está bloqueado", domain.ErrValidation, cav.Code)
	}
	prev := snapshotJSON(cav)
	action := entity.ActionRelease
	description := "Cavalete liberado"
	if userID != nil {
		action = entity.ActionAssign
		description = "Atribuído ao usuário " + *userID
		cav.UserID = userID
		cav.Status = entity.CavaleteAssigned
	} else {
		cav.UserID = nil
		cav.Status = entity.CavaleteAvailable
	}
	cav.UpdatedAt = time.Now()
	return histRepo.AppendCavalete(newCavaleteHistory(cav.ID, actorID, action, description, prev))
}

func newCavaleteHistory(cavaleteID, userID string, action entity.Action, description string, previous json.RawMessage) *entity.CavaleteHistory {
	return &entity.CavaleteHistory{
		ID:           uuid.New().String(),
		CavaleteID:   &cavaleteID,
		UserID:       &userID,
		Action:       action,
		Timestamp:    time.Now(),
		Description:  description,
		PreviousData: previous,
	}
}

func snapshotJSON(cav *entity.Cavalete) json.RawMessage {
	snap := entity.CavaleteSnapshot{Name: cav.Name, UserID: cav.UserID, Status: string(cav.Status)}
	b, _ := json.Marshal(snap)
	return b
}

// toResponse monta a resposta com usuário resumido e, opcionalmente, slots e ocupação.
func (uc *CavaleteUseCase) toResponse(cav *entity.Cavalete, withSlots bool) (*dto.CavaleteResponse, error) {
	resp := &dto.CavaleteResponse{
		ID:        cav.ID,
		Code:      cav.Code,
		Name:      cav.Name,
		Type:      string(cav.Type),
		Status:    string(cav.Status),
		CreatedAt: cav.CreatedAt,
		UpdatedAt: cav.UpdatedAt,
	}
	if cav.UserID != nil {
		user, err := uc.userRepo.GetByID(*cav.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			resp.User = &dto.UserSummary{ID: user.ID, Username: user.Username, Email: user.Email, Role: string(user.Role)}
		}
	}
	slots, err := uc.slotRepo.ListByCavalete(cav.ID)
	if err != nil {
		return nil, err
	}
	resp.Occupancy = workflow.Occupancy(slots)
	if withSlots {
		resp.Slots = make([]dto.SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp.Slots = append(resp.Slots, toSlotResponse(&s))
		}
	}
	return resp, nil
}
