// Package workflow concentra a máquina de estados da conferência:
// tabela de transições de slot, predicados de autorização e ocupação.
// As quatro variantes históricas do fluxo foram colapsadas aqui em uma
// tabela única; handlers não tomam decisão de transição por conta própria.
package workflow

import (
	"fmt"

	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
)

// Transition par origem/destino de uma ação de conferência.
type Transition struct {
	From entity.SlotStatus
	To   entity.SlotStatus
}

// slotTransitions tabela canônica (ação -> origem/destino). O fim de conferência
// passa por AWAITING_APPROVAL: a aprovação do gestor é uma etapa própria.
var slotTransitions = map[entity.Action]Transition{
	entity.ActionStartAudit:  {From: entity.SlotAvailable, To: entity.SlotAuditing},
	entity.ActionFinishAudit: {From: entity.SlotAuditing, To: entity.SlotAwaitingApproval},
	entity.ActionApprove:     {From: entity.SlotAwaitingApproval, To: entity.SlotCompleted},
	entity.ActionReturn:      {From: entity.SlotAwaitingApproval, To: entity.SlotAuditing},
	entity.ActionReopen:      {From: entity.SlotCompleted, To: entity.SlotAuditing},
}

// SlotTransition devolve a transição da ação, ou false se a ação não é de transição.
func SlotTransition(action entity.Action) (Transition, bool) {
	t, ok := slotTransitions[action]
	return t, ok
}

// NextSlotStatus aplica a guarda: devolve o status destino se o atual for o
// esperado pela ação; senão ErrGuardViolation com o status atual na mensagem.
// Guarda reprovada significa nenhuma mutação e nenhuma linha de histórico.
func NextSlotStatus(current entity.SlotStatus, action entity.Action) (entity.SlotStatus, error) {
	t, ok := slotTransitions[action]
	if !ok {
		return "", fmt.Errorf("%w: ação %s não é uma transição de slot", domain.ErrValidation, action)
	}
	if current != t.From {
		return "", fmt.Errorf("%w: ação %s exige status %s, slot está em %s",
			domain.ErrGuardViolation, action, t.From, current)
	}
	return t.To, nil
}

// CanEditFields informa se os campos de produto/quantidade podem ser alterados
// no status atual. Fora de AUDITING toda edição é rejeitada.
func CanEditFields(current entity.SlotStatus) bool {
	return current == entity.SlotAuditing
}
