package repository

import (
	"time"

	"github.com/metascan/metascan-api/internal/domain/entity"
)

// HistoryFilter filtros de consulta do histórico.
type HistoryFilter struct {
	EntityID *string // cavalete ou slot, conforme a listagem
	UserID   *string
	Action   *entity.Action
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// HistoryRepository porto append-only do histórico de auditoria.
// Não existe update nem delete: a interface não os expõe e o schema não os permite.
type HistoryRepository interface {
	AppendCavalete(h *entity.CavaleteHistory) error
	AppendSlot(h *entity.SlotHistory) error
	ListCavalete(f HistoryFilter) ([]*entity.CavaleteHistory, error)
	ListSlot(f HistoryFilter) ([]*entity.SlotHistory, error)
}
