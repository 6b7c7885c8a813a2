package repository

import "github.com/metascan/metascan-api/internal/domain/entity"

// CavaleteFilter filtros de listagem de cavaletes.
// UserID restringe aos cavaletes atribuídos (escopo do conferente).
type CavaleteFilter struct {
	Status *entity.CavaleteStatus
	Search string // busca por código
	UserID *string
	Limit  int
	Offset int
}

// CavaleteRepository define o porto de persistência para Cavalete (DIP).
type CavaleteRepository interface {
	Create(cav *entity.Cavalete) error
	GetByID(id string) (*entity.Cavalete, error)
	// GetByIDForUpdate carrega a linha com lock de escrita; usar dentro de transação
	// para serializar a checagem de guarda com a escrita.
	GetByIDForUpdate(id string) (*entity.Cavalete, error)
	Update(cav *entity.Cavalete) error
	Delete(id string) error
	List(f CavaleteFilter) ([]*entity.Cavalete, error)
	Count() (int, error)
	// LastCode devolve o maior código existente na sequência CAV (vazio se nenhum).
	LastCode() (string, error)
}
