package draft_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestWizard(t *testing.T) *draft.Wizard {
	t.Helper()
	st := draft.NewWizardState("w1", "u1", entity.ServicePrices{LiftGate: "15"}, time.Now())
	return draft.NewWizard(st, seqID("it"), shipment.DefaultDocumentLimits)
}

func item(desc string, qty int, weight, value int64) draft.ItemInput {
	return draft.ItemInput{
		Description: desc,
		Quantity:    qty,
		TotalWeight: decimal.NewFromInt(weight),
		UnitValue:   decimal.NewFromInt(value),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado inicial y navegación
// ──────────────────────────────────────────────────────────────────────────────

func TestNewWizardState_ValoresPorDefecto(t *testing.T) {
	w := newTestWizard(t)
	st := w.State()
	assert.Equal(t, 0, w.Step())
	assert.Equal(t, entity.StatusPending, st.Draft.Status)
	assert.NotNil(t, st.Draft.Items)
	assert.NotNil(t, st.Draft.Documents)
	assert.Equal(t, "15", st.Draft.Prices.LiftGate)
	assert.Empty(t, w.Errors())
}

func TestWizard_NextBloqueadoSinClienteNiReferencia(t *testing.T) {
	w := newTestWizard(t)

	assert.False(t, w.CanProceed())
	assert.False(t, w.Next())
	assert.Equal(t, 0, w.Step(), "un paso inválido no avanza")
	assert.Contains(t, w.Errors(), draft.FieldCustomer)
	assert.Contains(t, w.Errors(), draft.FieldRefCode)

	w.SetReference("REF-1")
	assert.NotContains(t, w.Errors(), draft.FieldRefCode, "editar el campo limpia su error")
	w.SetCustomerName("ACME")

	assert.True(t, w.Next())
	assert.Equal(t, 1, w.Step())
}

func TestWizard_PrevYGoTo(t *testing.T) {
	w := newTestWizard(t)

	assert.False(t, w.Prev(), "no hay paso anterior al 0")

	require.NoError(t, w.GoTo(3), "el salto lateral no valida")
	assert.Equal(t, 3, w.Step())
	assert.True(t, w.Prev())
	assert.Equal(t, 2, w.Step())

	err := w.GoTo(draft.LastStep + 1)
	assert.ErrorIs(t, err, domain.ErrStepOutOfRange)
	assert.Equal(t, 2, w.Step())
}

func TestWizard_NextEnUltimoPasoNoHaceNada(t *testing.T) {
	w := newTestWizard(t)
	require.NoError(t, w.GoTo(draft.LastStep))
	assert.False(t, w.Next())
	assert.Equal(t, draft.LastStep, w.Step())
}

func TestCanProceed_PasoItems(t *testing.T) {
	d := entity.ShipmentDraft{}
	assert.False(t, draft.CanProceed(draft.StepItems, d), "sin ítems ni servicios no se puede avanzar")

	d.Services.Appointment = true
	assert.True(t, draft.CanProceed(draft.StepItems, d))

	d.Services.Appointment = false
	d.Items = []entity.ManualItem{{ID: "a", Description: "caja", Quantity: 1}}
	assert.True(t, draft.CanProceed(draft.StepItems, d))
}

func TestCanProceed_DocumentosSiempreOpcional(t *testing.T) {
	assert.True(t, draft.CanProceed(draft.StepDocuments, entity.ShipmentDraft{}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Setters
// ──────────────────────────────────────────────────────────────────────────────

func TestWizard_EditarClienteAnulaIDYSubcliente(t *testing.T) {
	w := newTestWizard(t)
	w.SelectCustomer("c-1", "ACME")
	w.SelectSubcustomer("s-1", "ACME Norte")

	d := w.State().Draft
	require.NotNil(t, d.CustomerID)
	assert.Equal(t, "c-1", *d.CustomerID)
	assert.Equal(t, "ACME", d.CustomerName)

	w.SetCustomerName("ACME S.A.")
	d = w.State().Draft
	assert.Nil(t, d.CustomerID, "editar el nombre anula el ID del catálogo")
	assert.Nil(t, d.SubcustomerID)
	assert.Empty(t, d.SubcustomerName)
}

func TestWizard_AddItemAsignaIDYValida(t *testing.T) {
	w := newTestWizard(t)

	it, err := w.AddItem(item("caja", 2, 10, 5))
	require.NoError(t, err)
	assert.Equal(t, "it-1", it.ID)

	_, err = w.AddItem(item("", 0, 1, 1))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, w.Errors(), "items.description")
	assert.Contains(t, w.Errors(), "items.quantity")
	assert.Len(t, w.State().Draft.Items, 1)

	_, err = w.AddItem(item("pallet", 1, 3, 2))
	require.NoError(t, err)
	assert.NotContains(t, w.Errors(), "items.description", "un ítem válido limpia los errores previos")
}

func TestWizard_UpdateYRemoveItem(t *testing.T) {
	w := newTestWizard(t)
	it, err := w.AddItem(item("caja", 2, 10, 5))
	require.NoError(t, err)

	require.NoError(t, w.UpdateItem(it.ID, item("caja grande", 3, 12, 5)))
	assert.Equal(t, "caja grande", w.State().Draft.Items[0].Description)
	assert.Equal(t, it.ID, w.State().Draft.Items[0].ID)

	assert.ErrorIs(t, w.UpdateItem("nada", item("x", 1, 1, 1)), domain.ErrNotFound)
	require.NoError(t, w.RemoveItem(it.ID))
	assert.Empty(t, w.State().Draft.Items)
	assert.ErrorIs(t, w.RemoveItem(it.ID), domain.ErrNotFound)
}

func TestWizard_TotalesConServicio(t *testing.T) {
	w := newTestWizard(t)
	_, err := w.AddItem(item("caja", 2, 10, 5))
	require.NoError(t, err)
	require.NoError(t, w.SetService(entity.ServiceLiftGate, true))

	tot := w.Totals()
	assert.Equal(t, 3, tot.Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(tot.Weight))
	assert.True(t, decimal.NewFromInt(25).Equal(tot.Value))
}

func TestWizard_ServicioDesconocido(t *testing.T) {
	w := newTestWizard(t)
	assert.ErrorIs(t, w.SetService("forklift", true), domain.ErrInvalidInput)
	assert.ErrorIs(t, w.SetServicePrice("forklift", "3"), domain.ErrInvalidInput)
}

func TestWizard_Documentos(t *testing.T) {
	w := newTestWizard(t)
	pdf := entity.PendingDocument{Name: "bol.pdf", ContentType: "application/pdf", Size: 1024, Content: []byte("%PDF")}

	for i := 0; i < shipment.DefaultDocumentLimits.MaxCount; i++ {
		require.NoError(t, w.AddDocument(pdf))
	}
	err := w.AddDocument(pdf)
	assert.ErrorIs(t, err, domain.ErrDocumentLimit)
	assert.Contains(t, w.Errors(), draft.FieldDocuments)

	require.NoError(t, w.RemoveDocument(0))
	assert.NotContains(t, w.Errors(), draft.FieldDocuments)
	assert.ErrorIs(t, w.RemoveDocument(10), domain.ErrNotFound)

	err = w.AddDocument(entity.PendingDocument{Name: "foto.png", ContentType: "image/png", Size: 10})
	assert.ErrorIs(t, err, domain.ErrDocumentType)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación final
// ──────────────────────────────────────────────────────────────────────────────

func TestWizard_ValidateForSubmit(t *testing.T) {
	w := newTestWizard(t)

	assert.False(t, w.ValidateForSubmit())
	errs := w.Errors()
	for _, f := range []string{draft.FieldRefCode, draft.FieldCustomer, draft.FieldOrigin, draft.FieldDestination, draft.FieldDriver, draft.FieldItems, draft.FieldSubmit} {
		assert.Contains(t, errs, f, "falta el error de %s", f)
	}

	w.SetReference("REF-1")
	w.SetCustomerName("ACME")
	w.SetOrigin(entity.Location{Address: "Calle 1"})
	w.SetDestination(entity.Location{Address: "Calle 2"})
	w.SetCarrier("drv-1")
	require.NoError(t, w.SetService(entity.ServicePalletJack, true))

	assert.True(t, w.ValidateForSubmit())
	assert.NotContains(t, w.Errors(), draft.FieldSubmit)
}

func TestValidateForSubmit_IndependienteDelPaso(t *testing.T) {
	d := entity.ShipmentDraft{RefCode: "R", CustomerName: "C"}
	errs := draft.ValidateForSubmit(d)
	assert.Contains(t, errs, draft.FieldOrigin)
	assert.Contains(t, errs, draft.FieldSubmit)
	assert.NotContains(t, errs, draft.FieldRefCode)
}
