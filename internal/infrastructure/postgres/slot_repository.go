package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
)

var _ repository.SlotRepository = (*SlotRepo)(nil)

// SlotRepo implementação do porto SlotRepository sobre PostgreSQL
// (usável com pool ou tx).
type SlotRepo struct {
	q Querier
}

// NewSlotRepository constrói o adaptador de slots. Passar pool ou tx (Querier).
func NewSlotRepository(q Querier) *SlotRepo {
	return &SlotRepo{q: q}
}

const slotColumns = `id, cavalete_id, side, number, product_code, product_description, quantity, status, updated_at`

// CreateBatch insere os slots de um cavalete recém-criado em lote.
func (r *SlotRepo) CreateBatch(slots []*entity.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	query := `
		INSERT INTO slots (id, cavalete_id, side, number, product_code, product_description, quantity, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, s := range slots {
		_, err := r.q.Exec(context.Background(), query,
			s.ID, s.CavaleteID, s.Side, s.Number, s.ProductCode, s.ProductDescription,
			s.Quantity, s.Status, s.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: posição %s%d duplicada no cavalete", domain.ErrDuplicate, s.Side, s.Number)
			}
			return fmt.Errorf("insert slot: %w", err)
		}
	}
	return nil
}

// GetByID obtém um slot por ID.
func (r *SlotRepo) GetByID(id string) (*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByIDForUpdate obtém o slot bloqueando a linha (SELECT FOR UPDATE).
func (r *SlotRepo) GetByIDForUpdate(id string) (*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

func (r *SlotRepo) scanOne(query string, args ...any) (*entity.Slot, error) {
	var s entity.Slot
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&s.ID, &s.CavaleteID, &s.Side, &s.Number, &s.ProductCode, &s.ProductDescription,
		&s.Quantity, &s.Status, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &s, nil
}

// Update grava produto, quantidade e status de um slot.
func (r *SlotRepo) Update(slot *entity.Slot) error {
	query := `
		UPDATE slots SET product_code = $2, product_description = $3, quantity = $4, status = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		slot.ID, slot.ProductCode, slot.ProductDescription, slot.Quantity, slot.Status, slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	return nil
}

// ListByCavalete lista os slots de um cavalete ordenados por lado e posição.
func (r *SlotRepo) ListByCavalete(cavaleteID string) ([]entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE cavalete_id = $1 ORDER BY side, number`
	return r.scanMany(query, cavaleteID)
}

// ListByCavaleteAndStatus lista os slots de um cavalete em dado status
// (snapshot de elegibilidade das operações em massa).
func (r *SlotRepo) ListByCavaleteAndStatus(cavaleteID string, status entity.SlotStatus) ([]entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE cavalete_id = $1 AND status = $2 ORDER BY side, number`
	return r.scanMany(query, cavaleteID, status)
}

func (r *SlotRepo) scanMany(query string, args ...any) ([]entity.Slot, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()
	var list []entity.Slot
	for rows.Next() {
		var s entity.Slot
		if err := rows.Scan(&s.ID, &s.CavaleteID, &s.Side, &s.Number, &s.ProductCode, &s.ProductDescription,
			&s.Quantity, &s.Status, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// UpdateStatus compare-and-swap do status: escreve apenas se a linha ainda
// estiver em from. Devolve false quando outro escritor ganhou a corrida.
func (r *SlotRepo) UpdateStatus(id string, from, to entity.SlotStatus) (bool, error) {
	query := `UPDATE slots SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(context.Background(), query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update slot status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
