package repository

import "github.com/metascan/metascan-api/internal/domain/entity"

// SlotRepository define o porto de persistência para Slot (DIP).
type SlotRepository interface {
	CreateBatch(slots []*entity.Slot) error
	GetByID(id string) (*entity.Slot, error)
	// GetByIDForUpdate carrega a linha com lock de escrita; usar dentro de transação.
	GetByIDForUpdate(id string) (*entity.Slot, error)
	Update(slot *entity.Slot) error
	ListByCavalete(cavaleteID string) ([]entity.Slot, error)
	ListByCavaleteAndStatus(cavaleteID string, status entity.SlotStatus) ([]entity.Slot, error)
	// UpdateStatus faz compare-and-swap do status: só escreve se a linha ainda
	// estiver em from. Devolve false quando outro escritor ganhou a corrida.
	UpdateStatus(id string, from, to entity.SlotStatus) (bool, error)
}
