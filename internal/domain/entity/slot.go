package entity

import "time"

// SlotStatus status da conferência de um slot.
type SlotStatus string

// Status válidos de Slot.
const (
	SlotAvailable        SlotStatus = "AVAILABLE"
	SlotAuditing         SlotStatus = "AUDITING"
	SlotAwaitingApproval SlotStatus = "AWAITING_APPROVAL"
	SlotCompleted        SlotStatus = "COMPLETED"
)

// SlotSide lado do cavalete em que o slot fica.
type SlotSide string

const (
	SideA SlotSide = "A"
	SideB SlotSide = "B"
)

// Slot posição numerada de um lado de um cavalete.
// (CavaleteID, Side, Number) é único. Produto e quantidade só mudam em AUDITING.
type Slot struct {
	ID                 string
	CavaleteID         string
	Side               SlotSide
	Number             int
	ProductCode        *string
	ProductDescription *string
	Quantity           int
	Status             SlotStatus
	UpdatedAt          time.Time
}

// HasProduct informa se o slot tem código de produto registrado.
func (s Slot) HasProduct() bool {
	return s.ProductCode != nil && *s.ProductCode != ""
}
