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

var _ repository.CavaleteRepository = (*CavaleteRepo)(nil)

// CavaleteRepo implementação do porto CavaleteRepository sobre PostgreSQL
// (usável com pool ou tx).
type CavaleteRepo struct {
	q Querier
}

// NewCavaleteRepository constrói o adaptador de cavaletes. Passar pool ou tx (Querier).
func NewCavaleteRepository(q Querier) *CavaleteRepo {
	return &CavaleteRepo{q: q}
}

const cavaleteColumns = `id, code, name, type, status, user_id, created_at, updated_at`

// Create persiste um novo cavalete.
func (r *CavaleteRepo) Create(cav *entity.Cavalete) error {
	query := `
		INSERT INTO cavaletes (id, code, name, type, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		cav.ID, cav.Code, cav.Name, cav.Type, cav.Status, cav.UserID, cav.CreatedAt, cav.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %s já existe", domain.ErrDuplicate, cav.Code)
		}
		return fmt.Errorf("insert cavalete: %w", err)
	}
	return nil
}

// GetByID obtém um cavalete por ID.
func (r *CavaleteRepo) GetByID(id string) (*entity.Cavalete, error) {
	query := `SELECT ` + cavaleteColumns + ` FROM cavaletes WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByIDForUpdate obtém o cavalete bloqueando a linha (SELECT FOR UPDATE).
func (r *CavaleteRepo) GetByIDForUpdate(id string) (*entity.Cavalete, error) {
	query := `SELECT ` + cavaleteColumns + ` FROM cavaletes WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

func (r *CavaleteRepo) scanOne(query string, args ...any) (*entity.Cavalete, error) {
	var c entity.Cavalete
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&c.ID, &c.Code, &c.Name, &c.Type, &c.Status, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cavalete: %w", err)
	}
	return &c, nil
}

// Update atualiza nome, status e atribuição de um cavalete. Code é imutável.
func (r *CavaleteRepo) Update(cav *entity.Cavalete) error {
	query := `
		UPDATE cavaletes SET name = $2, status = $3, user_id = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		cav.ID, cav.Name, cav.Status, cav.UserID, cav.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cavalete: %w", err)
	}
	return nil
}

// Delete remove um cavalete; os slots caem em cascata e o histórico sobrevive
// com FK anulada.
func (r *CavaleteRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM cavaletes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cavalete: %w", err)
	}
	return nil
}

// List lista cavaletes aplicando filtros de status, busca por código e escopo
// de usuário, ordenados por código.
func (r *CavaleteRepo) List(f repository.CavaleteFilter) ([]*entity.Cavalete, error) {
	query := `SELECT ` + cavaleteColumns + ` FROM cavaletes WHERE 1=1`
	args := []any{}
	n := 0
	if f.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, *f.Status)
	}
	if f.Search != "" {
		n++
		query += fmt.Sprintf(" AND code ILIKE $%d", n)
		args = append(args, "%"+f.Search+"%")
	}
	if f.UserID != nil {
		n++
		query += fmt.Sprintf(" AND user_id = $%d", n)
		args = append(args, *f.UserID)
	}
	query += " ORDER BY code"
	if f.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, f.Limit)
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cavaletes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cavalete
	for rows.Next() {
		var c entity.Cavalete
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Type, &c.Status, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cavalete: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Count devolve o total de cavaletes no sistema (checagem do limite global).
func (r *CavaleteRepo) Count() (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(), `SELECT COUNT(*) FROM cavaletes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count cavaletes: %w", err)
	}
	return count, nil
}

// LastCode devolve o maior código na sequência CAV (vazio se não há nenhum).
// O padding de dois dígitos torna a ordenação lexicográfica suficiente.
func (r *CavaleteRepo) LastCode() (string, error) {
	var code string
	query := `SELECT code FROM cavaletes WHERE code LIKE 'CAV%' ORDER BY code DESC LIMIT 1`
	err := r.q.QueryRow(context.Background(), query).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last code: %w", err)
	}
	return code, nil
}
