package audit

import (
	"context"

	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
)

// Actor identidade resolvida por requisição (user + papel), consumida de fora.
type Actor struct {
	UserID string
	Role   entity.Role
}

// TxRunner executa uma função dentro de uma transação de DB, passando
// repositórios atados a essa tx. Garante que mutação de entidade e linha de
// histórico sejam confirmadas juntas ou nenhuma.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		cavRepo repository.CavaleteRepository,
		slotRepo repository.SlotRepository,
		histRepo repository.HistoryRepository,
	) error) error
}

// ProductInfo produto devolvido pela consulta Sankhya.
type ProductInfo struct {
	Code              string
	Description       string
	Brand             string
	SupplierReference string
	Location          string
	BasePrice         string
	Stock             string
	Unit              string
}

// ProductLookup porto da consulta de produtos no ERP. Erros esperados:
// domain.ErrProductNotFound (terminal, sem retry), domain.ErrSankhyaUnavailable
// (transitório, retries esgotados) e domain.ErrSankhyaAuth.
type ProductLookup interface {
	Lookup(ctx context.Context, productCode, userID string) (*ProductInfo, error)
}
