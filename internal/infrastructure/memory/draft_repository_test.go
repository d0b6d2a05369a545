package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRepo_GuardaYLeeCopia(t *testing.T) {
	repo := NewDraftRepository(0)
	ctx := context.Background()
	st := &entity.WizardState{
		ID:     "w1",
		UserID: "u1",
		Draft: entity.ShipmentDraft{
			RefCode: "REF-1",
			Items:   []entity.ManualItem{{ID: "a", Description: "caja", Quantity: 2, TotalWeight: decimal.NewFromInt(10), UnitValue: decimal.NewFromInt(5)}},
		},
		Errors: map[string]string{},
	}
	require.NoError(t, repo.SaveWizard(ctx, st))

	st.Draft.Items[0].Description = "modificado"

	got, err := repo.GetWizard(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "REF-1", got.Draft.RefCode)
	assert.Equal(t, "caja", got.Draft.Items[0].Description, "el almacén no debe compartir slices con el llamador")
	assert.True(t, got.Draft.Items[0].UnitValue.Equal(decimal.NewFromInt(5)))
}

func TestDraftRepo_NoExisteDevuelveNil(t *testing.T) {
	repo := NewDraftRepository(0)
	got, err := repo.GetEdit(context.Background(), "nada")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftRepo_Expiracion(t *testing.T) {
	repo := NewDraftRepository(time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.SaveEdit(ctx, &entity.EditState{ID: "e1", UserID: "u1"}))
	got, err := repo.GetEdit(ctx, "e1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = repo.GetEdit(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got, "una sesión expirada no debe devolverse")
}

func TestDraftRepo_Delete(t *testing.T) {
	repo := NewDraftRepository(0)
	ctx := context.Background()
	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "w1"}))
	require.NoError(t, repo.DeleteWizard(ctx, "w1"))
	require.NoError(t, repo.DeleteWizard(ctx, "w1"))

	got, err := repo.GetWizard(ctx, "w1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftRepo_PurgeExpiredBarreVencidos(t *testing.T) {
	repo := NewDraftRepository(time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "viejo", UserID: "u1"}))
	require.NoError(t, repo.SaveEdit(ctx, &entity.EditState{ID: "e-viejo", UserID: "u1"}))
	now = now.Add(50 * time.Second)
	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "nuevo", UserID: "u1"}))

	now = now.Add(20 * time.Second)
	n, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NotContains(t, repo.wizards, "viejo", "abandonado sin lecturas igual debe salir del mapa")
	assert.NotContains(t, repo.edits, "e-viejo")
	assert.Contains(t, repo.wizards, "nuevo")
}

func TestDraftRepo_ListWizardsPorUsuario(t *testing.T) {
	repo := NewDraftRepository(0)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{
		ID: "a", UserID: "u1", Step: 1, UpdatedAt: t0,
		Draft: entity.ShipmentDraft{RefCode: "REF-A", Items: []entity.ManualItem{
			{ID: "i1", Description: "caja", Quantity: 2, TotalWeight: decimal.NewFromInt(3), UnitValue: decimal.RequireFromString("10.25")},
		}},
	}))
	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "b", UserID: "u1", UpdatedAt: t0.Add(time.Minute)}))
	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "c", UserID: "u2", UpdatedAt: t0}))

	list, err := repo.ListWizards(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "el más reciente primero")
	assert.Equal(t, "REF-A", list[1].RefCode)
	assert.True(t, decimal.RequireFromString("20.5").Equal(list[1].TotalValue))
}
