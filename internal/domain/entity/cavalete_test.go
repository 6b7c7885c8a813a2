package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metascan/metascan-api/internal/domain/entity"
)

func TestNextCode(t *testing.T) {
	assert.Equal(t, "CAV01", entity.NextCode(""), "sistema vazio começa em CAV01")
	assert.Equal(t, "CAV02", entity.NextCode("CAV01"))
	assert.Equal(t, "CAV08", entity.NextCode("CAV07"))
	assert.Equal(t, "CAV10", entity.NextCode("CAV09"), "padding de dois dígitos")
	assert.Equal(t, "CAV01", entity.NextCode("XYZ99"), "código fora do padrão é ignorado")
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "Cavalete 07", entity.DefaultName("CAV07"))
	assert.Equal(t, "Cavalete 12", entity.DefaultName("CAV12"))
}

func TestDefaultStructure(t *testing.T) {
	corridor := entity.Cavalete{Type: entity.CavaleteCorridor}
	a, b := corridor.DefaultStructure()
	assert.Equal(t, 6, a)
	assert.Equal(t, 6, b)

	tower := entity.Cavalete{Type: entity.CavaleteTower}
	a, b = tower.DefaultStructure()
	assert.Equal(t, 12, a)
	assert.Equal(t, 0, b)
}

func TestApplyRolePermissions(t *testing.T) {
	u := entity.User{Role: entity.RoleAdmin}
	u.ApplyRolePermissions()
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)

	u.Role = entity.RoleManager
	u.ApplyRolePermissions()
	assert.True(t, u.IsStaff)
	assert.False(t, u.IsSuperuser, "rebaixar para gestor recalcula superuser")

	u.Role = entity.RoleAuditor
	u.ApplyRolePermissions()
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
}
