package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metascan/metascan-api/internal/application/dto"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Criação
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_CodigoSequencialENomePadrao(t *testing.T) {
	f := newFixture()
	uc := f.cavaleteUC()
	ctx := context.Background()

	first, err := uc.Create(ctx, manager, dto.CreateCavaleteRequest{})
	require.NoError(t, err)
	assert.Equal(t, "CAV01", first.Code)
	assert.Equal(t, "Cavalete 01", first.Name)
	assert.Equal(t, "CORRIDOR", first.Type, "tipo padrão é corredor")
	assert.Len(t, first.Slots, 12, "corredor tem 6 slots por lado")

	second, err := uc.Create(ctx, manager, dto.CreateCavaleteRequest{Type: "TOWER"})
	require.NoError(t, err)
	assert.Equal(t, "CAV02", second.Code)
	assert.Len(t, second.Slots, 12, "torre tem 12 slots em um lado")
	for _, s := range second.Slots {
		assert.Equal(t, "A", s.Side)
	}
}

func TestCreate_PosicoesUnicasPorLado(t *testing.T) {
	f := newFixture()
	resp, err := f.cavaleteUC().Create(context.Background(), admin, dto.CreateCavaleteRequest{
		Structure: &dto.StructureRequest{SlotsA: 3, SlotsB: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 5)

	seen := make(map[string]bool)
	for _, s := range resp.Slots {
		key := fmt.Sprintf("%s-%d", s.Side, s.Number)
		assert.False(t, seen[key], "par (lado, posição) repetido: %s", key)
		seen[key] = true
		assert.Equal(t, "AVAILABLE", s.Status)
	}
}

func TestCreate_LimiteGlobal(t *testing.T) {
	f := newFixture()
	uc := f.cavaleteUC()
	ctx := context.Background()
	for i := 0; i < entity.MaxCavaletes; i++ {
		_, err := uc.Create(ctx, admin, dto.CreateCavaleteRequest{})
		require.NoError(t, err)
	}

	_, err := uc.Create(ctx, admin, dto.CreateCavaleteRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCavaleteLimit))
}

func TestCreate_SomenteGestorOuAdmin(t *testing.T) {
	f := newFixture()
	_, err := f.cavaleteUC().Create(context.Background(), auditor, dto.CreateCavaleteRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// ──────────────────────────────────────────────────────────────────────────────
// Update genérico e exclusão
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_StatusNoPayloadRejeitado(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)

	_, err := f.cavaleteUC().Update(context.Background(), manager, "cav1", dto.UpdateCavaleteRequest{
		Status: strPtr("BLOCKED"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	stored, _ := f.cav.GetByID("cav1")
	assert.Equal(t, entity.CavaleteAvailable, stored.Status)
}

func TestDelete_HistoricoSobreviveComSnapshot(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)

	require.NoError(t, f.cavaleteUC().Delete(context.Background(), admin, "cav1"))

	stored, _ := f.cav.GetByID("cav1")
	assert.Nil(t, stored, "cavalete removido")

	rows, err := f.hist.ListCavalete(historyFilterFor("cav1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.ActionDelete, rows[0].Action)

	var snap entity.CavaleteSnapshot
	require.NoError(t, json.Unmarshal(rows[0].PreviousData, &snap))
	assert.Equal(t, "Cavalete 01", snap.Name, "o snapshot anterior fica na linha DELETE")
}

// ──────────────────────────────────────────────────────────────────────────────
// Atribuição
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignUser_AtribuiELibera(t *testing.T) {
	f := newFixture()
	f.addUser("u-conf", "conferente1", entity.RoleAuditor)
	f.addCavalete("cav1", "CAV01", nil)
	uc := f.cavaleteUC()
	ctx := context.Background()

	resp, err := uc.AssignUser(ctx, admin, "cav1", strPtr("u-conf"))
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", resp.Status)
	require.NotNil(t, resp.User)
	assert.Equal(t, "conferente1", resp.User.Username)

	resp, err = uc.AssignUser(ctx, admin, "cav1", nil)
	require.NoError(t, err)
	assert.Equal(t, "AVAILABLE", resp.Status)
	assert.Nil(t, resp.User)

	rows, err := f.hist.ListCavalete(historyFilterFor("cav1"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Listagem é mais recente primeiro.
	assert.Equal(t, entity.ActionRelease, rows[0].Action)
	assert.Equal(t, entity.ActionAssign, rows[1].Action)
}

func TestAssignUser_UsuarioInexistente(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)

	_, err := f.cavaleteUC().AssignUser(context.Background(), admin, "cav1", strPtr("fantasma"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestAssignUser_SomenteAdmin(t *testing.T) {
	f := newFixture()
	f.addUser("u-conf", "conferente1", entity.RoleAuditor)
	f.addCavalete("cav1", "CAV01", nil)

	_, err := f.cavaleteUC().AssignUser(context.Background(), manager, "cav1", strPtr("u-conf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestAssignUser_BloqueadoRejeitado(t *testing.T) {
	f := newFixture()
	f.addUser("u-conf", "conferente1", entity.RoleAuditor)
	cav := f.addCavalete("cav1", "CAV01", nil)
	cav.Status = entity.CavaleteBlocked
	require.NoError(t, f.cav.Update(cav))

	_, err := f.cavaleteUC().AssignUser(context.Background(), admin, "cav1", strPtr("u-conf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// ──────────────────────────────────────────────────────────────────────────────
// Bloqueio administrativo
// ──────────────────────────────────────────────────────────────────────────────

func TestSetBlocked_BloqueiaEDesbloqueia(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)
	uc := f.cavaleteUC()
	ctx := context.Background()

	resp, err := uc.SetBlocked(ctx, admin, "cav1", true)
	require.NoError(t, err)
	assert.Equal(t, "BLOCKED", resp.Status)

	resp, err = uc.SetBlocked(ctx, admin, "cav1", false)
	require.NoError(t, err)
	assert.Equal(t, "AVAILABLE", resp.Status)

	rows, err := f.hist.ListCavalete(historyFilterFor("cav1"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.ActionUnblock, rows[0].Action)
	assert.Equal(t, entity.ActionBlock, rows[1].Action)
}

func TestSetBlocked_AtribuidoPrecisaSerLiberadoAntes(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr("u-conf"))

	_, err := f.cavaleteUC().SetBlocked(context.Background(), admin, "cav1", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSetBlocked_SomenteAdmin(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)

	_, err := f.cavaleteUC().SetBlocked(context.Background(), manager, "cav1", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestBulkAssign_UmaLinhaDeHistoricoPorCavalete(t *testing.T) {
	f := newFixture()
	f.addUser("u-conf", "conferente1", entity.RoleAuditor)
	f.addCavalete("cav1", "CAV01", nil)
	f.addCavalete("cav2", "CAV02", nil)

	_, err := f.cavaleteUC().BulkAssign(context.Background(), admin, dto.BulkAssignRequest{
		CavaleteIDs: []string{"cav1", "cav2"},
		UserID:      strPtr("u-conf"),
	})
	require.NoError(t, err)

	for _, id := range []string{"cav1", "cav2"} {
		stored, _ := f.cav.GetByID(id)
		assert.Equal(t, entity.CavaleteAssigned, stored.Status)
		rows, _ := f.hist.ListCavalete(historyFilterFor(id))
		assert.Len(t, rows, 1, "cavalete %s deve ter sua própria linha ASSIGN", id)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escopo de visão e ocupação
// ──────────────────────────────────────────────────────────────────────────────

func TestList_ConferenteSoVeOsDele(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addCavalete("cav2", "CAV02", strPtr("u-outro"))
	f.addCavalete("cav3", "CAV03", nil)

	resp, err := f.cavaleteUC().List(context.Background(), auditor, "", "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "CAV01", resp.Items[0].Code)

	// Gestor vê todos.
	resp, err = f.cavaleteUC().List(context.Background(), manager, "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 3)
}

func TestGetByID_ConferenteForaDoEscopo(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr("u-outro"))

	_, err := f.cavaleteUC().GetByID(context.Background(), auditor, "cav1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestGetByID_OcupacaoDerivada(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)
	for i := 1; i <= 3; i++ {
		s := f.addSlot(fmt.Sprintf("s%d", i), "cav1", entity.SideA, i, entity.SlotCompleted)
		s.ProductCode = strPtr(fmt.Sprintf("P%d", i))
		require.NoError(t, f.slot.Update(s))
	}
	for i := 4; i <= 6; i++ {
		f.addSlot(fmt.Sprintf("s%d", i), "cav1", entity.SideA, i, entity.SlotAvailable)
	}

	resp, err := f.cavaleteUC().GetByID(context.Background(), manager, "cav1")
	require.NoError(t, err)
	assert.Equal(t, "3/6 50%", resp.Occupancy)
}
