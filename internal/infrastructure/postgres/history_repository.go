package postgres

import (
	"context"
	"fmt"

	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementação append-only do porto HistoryRepository sobre
// PostgreSQL (usável com pool ou tx). Update e delete não existem aqui.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository constrói o adaptador do histórico. Passar pool ou tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// AppendCavalete grava uma entrada no histórico de cavaletes.
func (r *HistoryRepo) AppendCavalete(h *entity.CavaleteHistory) error {
	query := `
		INSERT INTO cavalete_history (id, cavalete_id, user_id, action, timestamp, description, previous_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		h.ID, h.CavaleteID, h.UserID, h.Action, h.Timestamp, h.Description, h.PreviousData,
	)
	if err != nil {
		return fmt.Errorf("insert cavalete history: %w", err)
	}
	return nil
}

// AppendSlot grava uma entrada no histórico de slots.
func (r *HistoryRepo) AppendSlot(h *entity.SlotHistory) error {
	query := `
		INSERT INTO slot_history (id, slot_id, user_id, action, timestamp, description,
			old_product_code, new_product_code, old_quantity, new_quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		h.ID, h.SlotID, h.UserID, h.Action, h.Timestamp, h.Description,
		h.OldProductCode, h.NewProductCode, h.OldQuantity, h.NewQuantity, h.Status,
	)
	if err != nil {
		return fmt.Errorf("insert slot history: %w", err)
	}
	return nil
}

// ListCavalete lista o histórico de cavaletes filtrado, mais recente primeiro.
func (r *HistoryRepo) ListCavalete(f repository.HistoryFilter) ([]*entity.CavaleteHistory, error) {
	query := `
		SELECT id, cavalete_id, user_id, action, timestamp, description, previous_data
		FROM cavalete_history WHERE 1=1`
	query, args := applyHistoryFilter(query, "cavalete_id", f)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cavalete history: %w", err)
	}
	defer rows.Close()
	var list []*entity.CavaleteHistory
	for rows.Next() {
		var h entity.CavaleteHistory
		if err := rows.Scan(&h.ID, &h.CavaleteID, &h.UserID, &h.Action, &h.Timestamp,
			&h.Description, &h.PreviousData); err != nil {
			return nil, fmt.Errorf("scan cavalete history: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

// ListSlot lista o histórico de slots filtrado, mais recente primeiro.
func (r *HistoryRepo) ListSlot(f repository.HistoryFilter) ([]*entity.SlotHistory, error) {
	query := `
		SELECT id, slot_id, user_id, action, timestamp, description,
			old_product_code, new_product_code, old_quantity, new_quantity, status
		FROM slot_history WHERE 1=1`
	query, args := applyHistoryFilter(query, "slot_id", f)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slot history: %w", err)
	}
	defer rows.Close()
	var list []*entity.SlotHistory
	for rows.Next() {
		var h entity.SlotHistory
		if err := rows.Scan(&h.ID, &h.SlotID, &h.UserID, &h.Action, &h.Timestamp, &h.Description,
			&h.OldProductCode, &h.NewProductCode, &h.OldQuantity, &h.NewQuantity, &h.Status); err != nil {
			return nil, fmt.Errorf("scan slot history: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

// applyHistoryFilter aplica os filtros comuns e a ordenação timestamp DESC.
func applyHistoryFilter(query, entityColumn string, f repository.HistoryFilter) (string, []any) {
	args := []any{}
	n := 0
	if f.EntityID != nil {
		n++
		query += fmt.Sprintf(" AND %s = $%d", entityColumn, n)
		args = append(args, *f.EntityID)
	}
	if f.UserID != nil {
		n++
		query += fmt.Sprintf(" AND user_id = $%d", n)
		args = append(args, *f.UserID)
	}
	if f.Action != nil {
		n++
		query += fmt.Sprintf(" AND action = $%d", n)
		args = append(args, *f.Action)
	}
	if f.From != nil {
		n++
		query += fmt.Sprintf(" AND timestamp >= $%d", n)
		args = append(args, *f.From)
	}
	if f.To != nil {
		n++
		query += fmt.Sprintf(" AND timestamp <= $%d", n)
		args = append(args, *f.To)
	}
	query += " ORDER BY timestamp DESC"
	if f.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, f.Limit)
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, f.Offset)
	}
	return query, args
}
