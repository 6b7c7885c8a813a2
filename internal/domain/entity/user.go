package entity

import "time"

// Role papel do usuário no sistema (enum fechado; comparações sempre via constantes).
type Role string

// Papéis válidos para User.
const (
	RoleAdmin   Role = "ADMIN"   // administrador
	RoleManager Role = "MANAGER" // gestor
	RoleAuditor Role = "AUDITOR" // conferente
)

// Valid informa se o papel é um dos três conhecidos.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAuditor:
		return true
	}
	return false
}

// User representa um usuário do sistema.
// SankhyaPassword é a credencial usada no login legado da Sankhya em nome do usuário.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string // bcrypt hash, nunca plano no domínio após persistir
	Role            Role
	IsStaff         bool // derivado do papel, recalculado a cada alteração
	IsSuperuser     bool // derivado do papel, recalculado a cada alteração
	IsActive        bool
	SankhyaPassword string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApplyRolePermissions recalcula as permissões de plataforma derivadas do papel.
// Deve ser chamado na criação E em toda troca de papel, nunca só na criação.
func (u *User) ApplyRolePermissions() {
	switch u.Role {
	case RoleAdmin:
		u.IsStaff = true
		u.IsSuperuser = true
	case RoleManager:
		u.IsStaff = true
		u.IsSuperuser = false
	default:
		u.IsStaff = false
		u.IsSuperuser = false
	}
}
