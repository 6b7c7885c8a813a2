package workflow

import "github.com/metascan/metascan-api/internal/domain/entity"

// CanManageCavaletes informa se o papel pode criar/editar/excluir cavaletes.
func CanManageCavaletes(role entity.Role) bool {
	return role == entity.RoleManager || role == entity.RoleAdmin
}

// CanAssign informa se o papel pode atribuir/liberar cavaletes (individual ou em massa).
func CanAssign(role entity.Role) bool {
	return role == entity.RoleAdmin
}

// CanViewCavalete informa se o usuário pode ver o cavalete: gestor e admin veem
// todos; conferente só vê os atribuídos a ele.
func CanViewCavalete(role entity.Role, userID string, cav *entity.Cavalete) bool {
	switch role {
	case entity.RoleManager, entity.RoleAdmin:
		return true
	case entity.RoleAuditor:
		return cav.UserID != nil && *cav.UserID == userID
	}
	return false
}

// CanViewHistory informa se o papel pode consultar os históricos.
func CanViewHistory(role entity.Role) bool {
	return role == entity.RoleManager || role == entity.RoleAdmin
}

// CanTransition informa se o papel pode executar a ação de transição em um slot
// individual. Conferente inicia e finaliza nos cavaletes dele; aprovação,
// devolução e reabertura são do gestor/admin.
func CanTransition(role entity.Role, action entity.Action) bool {
	switch action {
	case entity.ActionStartAudit, entity.ActionFinishAudit:
		return role == entity.RoleAuditor || role == entity.RoleManager || role == entity.RoleAdmin
	case entity.ActionApprove, entity.ActionReturn, entity.ActionReopen:
		return role == entity.RoleManager || role == entity.RoleAdmin
	}
	return false
}

// CanBulkTransition informa se o papel pode executar a variante em massa da ação.
// Só finish-all fica aberta ao conferente.
func CanBulkTransition(role entity.Role, action entity.Action) bool {
	if action == entity.ActionFinishAudit {
		return role == entity.RoleAuditor || role == entity.RoleManager || role == entity.RoleAdmin
	}
	switch action {
	case entity.ActionStartAudit, entity.ActionApprove, entity.ActionReopen:
		return role == entity.RoleManager || role == entity.RoleAdmin
	}
	return false
}
