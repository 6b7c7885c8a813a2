package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metascan/metascan-api/internal/application/dto"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Edição de campos (gated em AUDITING)
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateFields_PermitidoEmAuditing(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAuditing)

	resp, err := f.slotUC().UpdateFields(context.Background(), auditor, "s1", dto.UpdateSlotRequest{
		ProductCode: strPtr("P100"),
		Quantity:    intPtr(5),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ProductCode)
	assert.Equal(t, "P100", *resp.ProductCode)
	assert.Equal(t, 5, resp.Quantity)
	require.NotNil(t, resp.ProductDescription)
	assert.Equal(t, "Parafuso sextavado M8", *resp.ProductDescription,
		"a descrição vem da consulta Sankhya, não do chamador")
}

func TestUpdateFields_RejeitadoForaDeAuditing(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))

	for i, status := range []entity.SlotStatus{
		entity.SlotAvailable, entity.SlotAwaitingApproval, entity.SlotCompleted,
	} {
		t.Run(string(status), func(t *testing.T) {
			s := f.addSlot("s-"+string(status), "cav1", entity.SideB, i+1, status)
			_, err := f.slotUC().UpdateFields(context.Background(), auditor, s.ID, dto.UpdateSlotRequest{
				Quantity: intPtr(3),
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Contains(t, err.Error(), string(status), "a mensagem deve nomear o status atual")

			stored, _ := f.slot.GetByID(s.ID)
			assert.Equal(t, 0, stored.Quantity, "nada pode ter sido gravado")
			assert.Empty(t, f.hist.slotActions(s.ID), "guarda reprovada não gera histórico")
		})
	}
}

func TestUpdateFields_StatusNoPayloadRejeitado(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAuditing)

	_, err := f.slotUC().UpdateFields(context.Background(), auditor, "s1", dto.UpdateSlotRequest{
		Status: strPtr("COMPLETED"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	stored, _ := f.slot.GetByID("s1")
	assert.Equal(t, entity.SlotAuditing, stored.Status, "status não muda pelo update genérico")
}

func TestUpdateFields_ProdutoInexistenteRejeitaTudo(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAuditing)

	_, err := f.slotUC().UpdateFields(context.Background(), auditor, "s1", dto.UpdateSlotRequest{
		ProductCode: strPtr("NAO-EXISTE"),
		Quantity:    intPtr(9),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))

	stored, _ := f.slot.GetByID("s1")
	assert.Nil(t, stored.ProductCode, "o código não pode ter sido gravado")
	assert.Equal(t, 0, stored.Quantity, "a edição inteira é rejeitada")
}

func TestUpdateFields_QuantidadeNegativaRejeitada(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAuditing)

	_, err := f.slotUC().UpdateFields(context.Background(), auditor, "s1", dto.UpdateSlotRequest{
		Quantity: intPtr(-1),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUpdateFields_HistoricoGuardaPrePos(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	s := f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAuditing)
	s.ProductCode = strPtr("P100")
	s.Quantity = 2
	require.NoError(t, f.slot.Update(s))

	_, err := f.slotUC().UpdateFields(context.Background(), auditor, "s1", dto.UpdateSlotRequest{
		ProductCode: strPtr("P200"),
		Quantity:    intPtr(7),
	})
	require.NoError(t, err)

	rows, err := f.hist.ListSlot(historyFilterFor("s1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	h := rows[0]
	assert.Equal(t, entity.ActionUpdate, h.Action)
	assert.Equal(t, "P100", *h.OldProductCode)
	assert.Equal(t, "P200", *h.NewProductCode)
	assert.Equal(t, 2, *h.OldQuantity)
	assert.Equal(t, 7, *h.NewQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transições individuais
// ──────────────────────────────────────────────────────────────────────────────

func TestTransicoes_CaminhoFeliz(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAvailable)
	uc := f.slotUC()
	ctx := context.Background()

	resp, err := uc.StartAudit(ctx, auditor, "s1")
	require.NoError(t, err)
	assert.Equal(t, "AUDITING", resp.Status)

	resp, err = uc.FinishAudit(ctx, auditor, "s1")
	require.NoError(t, err)
	assert.Equal(t, "AWAITING_APPROVAL", resp.Status)

	resp, err = uc.Approve(ctx, manager, "s1")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Status)

	// Cada transição gerou sua linha de histórico, na ordem.
	assert.Equal(t, []entity.Action{
		entity.ActionStartAudit, entity.ActionFinishAudit, entity.ActionApprove,
	}, f.hist.slotActions("s1"))
}

func TestTransicoes_GuardaReprovadaNaoMutaNemRegistra(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAvailable)

	_, err := f.slotUC().FinishAudit(context.Background(), auditor, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGuardViolation))

	stored, _ := f.slot.GetByID("s1")
	assert.Equal(t, entity.SlotAvailable, stored.Status)
	assert.Empty(t, f.hist.slotActions("s1"))
}

func TestTransicoes_AutorizacaoPorPapel(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAwaitingApproval)

	// Conferente não aprova, devolve nem reabre.
	_, err := f.slotUC().Approve(context.Background(), auditor, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.slotUC().ReturnForRework(context.Background(), auditor, "s1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	// Gestor devolve: AWAITING_APPROVAL -> AUDITING.
	resp, err := f.slotUC().ReturnForRework(context.Background(), manager, "s1")
	require.NoError(t, err)
	assert.Equal(t, "AUDITING", resp.Status)
}

func TestTransicoes_ConferenteSoNosCavaletesDele(t *testing.T) {
	f := newFixture()
	outro := "u-outro-conferente"
	f.addCavalete("cav1", "CAV01", &outro)
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAvailable)

	_, err := f.slotUC().StartAudit(context.Background(), auditor, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestReopen_ReabreEDepoisReprovaGuarda(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotCompleted)
	uc := f.slotUC()
	ctx := context.Background()

	resp, err := uc.Reopen(ctx, manager, "s1")
	require.NoError(t, err)
	assert.Equal(t, "AUDITING", resp.Status)

	_, err = uc.Reopen(ctx, manager, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGuardViolation))

	stored, _ := f.slot.GetByID("s1")
	assert.Equal(t, entity.SlotAuditing, stored.Status, "a segunda reabertura é no-op")
	assert.Equal(t, []entity.Action{entity.ActionReopen}, f.hist.slotActions("s1"),
		"só a reabertura efetiva gera histórico")
}

// ──────────────────────────────────────────────────────────────────────────────
// Operações em massa
// ──────────────────────────────────────────────────────────────────────────────

func TestFinishAll_ContaSoOsElegiveis(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAuditing)
	f.addSlot("s2", "cav1", entity.SideA, 2, entity.SlotAuditing)
	f.addSlot("s3", "cav1", entity.SideA, 3, entity.SlotAvailable)
	f.addSlot("s4", "cav1", entity.SideB, 1, entity.SlotCompleted)

	resp, err := f.slotUC().FinishAll(context.Background(), auditor, "cav1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.UpdatedCount, "só os dois em AUDITING transicionam")

	s1, _ := f.slot.GetByID("s1")
	s3, _ := f.slot.GetByID("s3")
	assert.Equal(t, entity.SlotAwaitingApproval, s1.Status)
	assert.Equal(t, entity.SlotAvailable, s3.Status, "slot fora do status de origem não é tocado")
	assert.Len(t, f.hist.slotActions("s1"), 1, "uma linha de histórico por slot transicionado")
	assert.Empty(t, f.hist.slotActions("s3"))
}

func TestBulk_SemElegiveisEhErro(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", nil)
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotCompleted)

	_, err := f.slotUC().StartAll(context.Background(), manager, "cav1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoEligibleSlots))
}

func TestBulk_AutorizacaoPorPapel(t *testing.T) {
	f := newFixture()
	f.addCavalete("cav1", "CAV01", strPtr(auditor.UserID))
	f.addSlot("s1", "cav1", entity.SideA, 1, entity.SlotAvailable)

	// start-all é do gestor/admin; finish-all fica aberta ao conferente.
	_, err := f.slotUC().StartAll(context.Background(), auditor, "cav1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.slotUC().StartAll(context.Background(), manager, "cav1")
	require.NoError(t, err)

	resp, err := f.slotUC().FinishAll(context.Background(), auditor, "cav1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.UpdatedCount)
}

func TestBulk_CavaleteInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.slotUC().ApproveAll(context.Background(), admin, "nao-existe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
