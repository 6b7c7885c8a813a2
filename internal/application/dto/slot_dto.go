package dto

import "time"

// UpdateSlotRequest edição de campos de produto do slot (só em AUDITING).
// Status presente no payload é rejeitado: status só muda pelas ações de transição.
type UpdateSlotRequest struct {
	ProductCode        *string `json:"product_code"`
	ProductDescription *string `json:"product_description"`
	Quantity           *int    `json:"quantity"`
	Status             *string `json:"status"`
}

// SlotResponse slot nas respostas.
type SlotResponse struct {
	ID                 string    `json:"id"`
	CavaleteID         string    `json:"cavalete_id"`
	Side               string    `json:"side"`
	Number             int       `json:"number"`
	ProductCode        *string   `json:"product_code"`
	ProductDescription *string   `json:"product_description"`
	Quantity           int       `json:"quantity"`
	Status             string    `json:"status"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TransitionResponse resultado de uma transição individual.
type TransitionResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// BulkTransitionRequest alvo das operações em massa sobre os slots de um cavalete.
type BulkTransitionRequest struct {
	CavaleteID string `json:"cavalete_id"`
}

// BulkTransitionResponse resultado de uma operação em massa.
type BulkTransitionResponse struct {
	UpdatedCount int    `json:"updated_count"`
	CavaleteID   string `json:"cavalete_id"`
	Detail       string `json:"detail"`
}
