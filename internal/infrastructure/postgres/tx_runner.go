package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/domain/repository"
)

// Ensure TxRunner implements audit.TxRunner.
var _ audit.TxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL.
// É a garantia de que mutação de entidade e linha de histórico confirmam juntas.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constrói o runner com o pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia uma transação, executa fn com repos atados à tx e faz Commit ou Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	cavRepo repository.CavaleteRepository,
	slotRepo repository.SlotRepository,
	histRepo repository.HistoryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cavRepo := NewCavaleteRepository(tx)
	slotRepo := NewSlotRepository(tx)
	histRepo := NewHistoryRepository(tx)

	if err := fn(cavRepo, slotRepo, histRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
