package dto

import "time"

// StructureRequest quantidades de slots por lado na criação de um cavalete.
// Quando ausente, a estrutura padrão do tipo é usada (6x2 corredor, 12 torre).
type StructureRequest struct {
	SlotsA int `json:"slots_a"`
	SlotsB int `json:"slots_b"`
}

// CreateCavaleteRequest criação de cavalete. Código e nome são gerados pelo sistema.
type CreateCavaleteRequest struct {
	Type      string            `json:"type"`
	Structure *StructureRequest `json:"structure"`
}

// UpdateCavaleteRequest atualização genérica de cavalete.
// Status presente no payload é rejeitado: status só muda por assign/release/block.
type UpdateCavaleteRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// AssignUserRequest atribuição de conferente; UserID nulo libera o cavalete.
type AssignUserRequest struct {
	UserID *string `json:"user_id"`
}

// BulkAssignRequest atribuição em massa.
type BulkAssignRequest struct {
	CavaleteIDs []string `json:"cavalete_ids"`
	UserID      *string  `json:"user_id"`
}

// CavaleteResponse cavalete nas respostas, com slots e ocupação derivada.
type CavaleteResponse struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	User      *UserSummary   `json:"user"`
	Occupancy string         `json:"occupancy"` // formato "5/12 42%"
	Slots     []SlotResponse `json:"slots,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CavaleteListResponse listagem paginada de cavaletes.
type CavaleteListResponse struct {
	Items []CavaleteResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BulkAssignResponse resultado da atribuição em massa.
type BulkAssignResponse struct {
	CavaleteIDs []string `json:"cavalete_ids"`
	UserID      *string  `json:"user_id"`
}
