package dto

import (
	"encoding/json"
	"time"
)

// CavaleteHistoryResponse entrada do histórico de cavaletes.
type CavaleteHistoryResponse struct {
	ID           string          `json:"id"`
	CavaleteID   *string         `json:"cavalete_id"`
	UserID       *string         `json:"user_id"`
	Action       string          `json:"action"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description,omitempty"`
	PreviousData json.RawMessage `json:"previous_data,omitempty"`
}

// SlotHistoryResponse entrada do histórico de slots (pré/pós para UPDATE,
// snapshot resultante para transições).
type SlotHistoryResponse struct {
	ID             string    `json:"id"`
	SlotID         *string   `json:"slot_id"`
	UserID         *string   `json:"user_id"`
	Action         string    `json:"action"`
	Timestamp      time.Time `json:"timestamp"`
	Description    string    `json:"description,omitempty"`
	OldProductCode *string   `json:"old_product_code"`
	NewProductCode *string   `json:"new_product_code"`
	OldQuantity    *int      `json:"old_quantity"`
	NewQuantity    *int      `json:"new_quantity"`
	Status         string    `json:"status"`
}

// CavaleteHistoryListResponse listagem paginada (timestamp desc).
type CavaleteHistoryListResponse struct {
	Items []CavaleteHistoryResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// SlotHistoryListResponse listagem paginada (timestamp desc).
type SlotHistoryListResponse struct {
	Items []SlotHistoryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
