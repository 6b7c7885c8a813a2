package entity

import (
	"encoding/json"
	"time"
)

// Action ação registrada no histórico de cavaletes e slots.
type Action string

// Ações de histórico. Uma entrada por operação mutadora, na mesma transação.
const (
	ActionCreate      Action = "CREATE"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
	ActionAssign      Action = "ASSIGN"
	ActionRelease     Action = "RELEASE"
	ActionBlock       Action = "BLOCK"
	ActionUnblock     Action = "UNBLOCK"
	ActionStartAudit  Action = "START_AUDIT"
	ActionFinishAudit Action = "FINISH_AUDIT"
	ActionApprove     Action = "APPROVE"
	ActionReturn      Action = "RETURN"
	ActionReopen      Action = "REOPEN"
)

// Valid informa se a ação é conhecida.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionAssign, ActionRelease,
		ActionBlock, ActionUnblock,
		ActionStartAudit, ActionFinishAudit, ActionApprove, ActionReturn, ActionReopen:
		return true
	}
	return false
}

// CavaleteHistory registro imutável de uma ação sobre um cavalete.
// CavaleteID e UserID são nullable: a entidade ou o usuário podem ser removidos depois,
// o histórico sobrevive. Nunca existe update/delete sobre estas linhas.
type CavaleteHistory struct {
	ID           string
	CavaleteID   *string
	UserID       *string
	Action       Action
	Timestamp    time.Time
	Description  string
	PreviousData json.RawMessage // snapshot anterior: name/user/status
}

// CavaleteSnapshot é o formato serializado em PreviousData.
type CavaleteSnapshot struct {
	Name   string  `json:"name"`
	UserID *string `json:"user_id"`
	Status string  `json:"status"`
}

// SlotHistory registro imutável de uma ação sobre um slot.
// Para UPDATE guarda valores pré e pós (produto e quantidade); para transições
// de status guarda o snapshot resultante em Status.
type SlotHistory struct {
	ID             string
	SlotID         *string
	UserID         *string
	Action         Action
	Timestamp      time.Time
	Description    string
	OldProductCode *string
	NewProductCode *string
	OldQuantity    *int
	NewQuantity    *int
	Status         SlotStatus // status resultante da ação
}
