package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CavaleteStatus status do ciclo de vida do cavalete.
type CavaleteStatus string

// Status válidos de Cavalete. Mudam apenas via assign/release/block, nunca pelo update genérico.
const (
	CavaleteAvailable CavaleteStatus = "AVAILABLE"
	CavaleteAssigned  CavaleteStatus = "ASSIGNED"
	CavaleteBlocked   CavaleteStatus = "BLOCKED"
)

// CavaleteType tipo físico do cavalete; determina a capacidade de slots.
type CavaleteType string

const (
	CavaleteCorridor CavaleteType = "CORRIDOR" // 6 slots por lado, dois lados
	CavaleteTower    CavaleteType = "TOWER"    // 12 slots em um lado só
)

// CodePrefix prefixo do código sequencial gerado pelo sistema.
const CodePrefix = "CAV"

// MaxCavaletes limite global de cavaletes no sistema.
const MaxCavaletes = 30

// Cavalete representa o cavalete físico que contém slots de produtos.
// Code é imutável depois de atribuído e único no sistema.
type Cavalete struct {
	ID        string
	Code      string
	Name      string
	Type      CavaleteType
	Status    CavaleteStatus
	UserID    *string // conferente responsável; nil quando liberado
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultStructure devolve a quantidade padrão de slots por lado segundo o tipo.
func (c Cavalete) DefaultStructure() (slotsA, slotsB int) {
	if c.Type == CavaleteTower {
		return 12, 0
	}
	return 6, 6
}

// NextCode calcula o próximo código sequencial a partir do maior sufixo numérico existente.
// Códigos fora do padrão CAV<n> são ignorados.
func NextCode(lastCode string) string {
	next := 1
	if strings.HasPrefix(lastCode, CodePrefix) {
		if n, err := strconv.Atoi(lastCode[len(CodePrefix):]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%02d", CodePrefix, next)
}

// DefaultName devolve o nome padrão para um código recém-gerado (ex: "Cavalete 07").
func DefaultName(code string) string {
	suffix := strings.TrimPrefix(code, CodePrefix)
	return "Cavalete " + suffix
}
