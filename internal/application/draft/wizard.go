package draft

import (
	"fmt"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
)

// NewWizardState borrador vacío al montar el asistente: paso 0, estado pending,
// precios de servicios con los valores por defecto del catálogo.
func NewWizardState(id, userID string, defaultPrices entity.ServicePrices, now time.Time) *entity.WizardState {
	return &entity.WizardState{
		ID:     id,
		UserID: userID,
		Step:   0,
		Draft: entity.ShipmentDraft{
			Items:     []entity.ManualItem{},
			Prices:    defaultPrices,
			Status:    entity.StatusPending,
			Documents: []entity.Document{},
		},
		Errors:    map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Wizard controlador del asistente de creación. Avanzar está condicionado por
// CanProceed; retroceder y saltar (GoTo) no lo están.
type Wizard struct {
	*Editor
	state *entity.WizardState
}

// NewWizard envuelve un estado persistido.
func NewWizard(state *entity.WizardState, newID func() string, limits shipment.DocumentLimits) *Wizard {
	if state.Errors == nil {
		state.Errors = map[string]string{}
	}
	return &Wizard{
		Editor: NewEditor(&state.Draft, ErrorMap(state.Errors), newID, limits),
		state:  state,
	}
}

// State estado subyacente.
func (w *Wizard) State() *entity.WizardState { return w.state }

// Step índice del paso actual.
func (w *Wizard) Step() int { return w.state.Step }

// Errors mapa de errores actual.
func (w *Wizard) Errors() ErrorMap { return ErrorMap(w.state.Errors) }

// Totals totales derivados del borrador actual.
func (w *Wizard) Totals() shipment.Totals { return shipment.DraftTotals(w.state.Draft) }

// CanProceed indica si el paso actual permite avanzar.
func (w *Wizard) CanProceed() bool { return CanProceed(w.state.Step, w.state.Draft) }

// Next avanza un paso si el actual es válido; si no, publica sus errores y no se mueve.
// En el último paso no hace nada.
func (w *Wizard) Next() bool {
	if w.state.Step >= LastStep {
		return false
	}
	errs := ValidateStep(w.state.Step, w.state.Draft)
	if len(errs) > 0 {
		w.Errors().Merge(errs)
		return false
	}
	w.state.Step++
	return true
}

// Prev retrocede un paso; siempre permitido por encima del paso 0.
func (w *Wizard) Prev() bool {
	if w.state.Step <= 0 {
		return false
	}
	w.state.Step--
	return true
}

// GoTo salto directo desde la navegación lateral, sin validar.
func (w *Wizard) GoTo(step int) error {
	if step < 0 || step > LastStep {
		return fmt.Errorf("paso %d: %w", step, domain.ErrStepOutOfRange)
	}
	w.state.Step = step
	return nil
}

// ValidateForSubmit corre la validación final y publica los errores. Devuelve true si se puede enviar.
func (w *Wizard) ValidateForSubmit() bool {
	errs := ValidateForSubmit(w.state.Draft)
	w.Errors().Clear(FieldSubmit)
	if len(errs) == 0 {
		return true
	}
	w.Errors().Merge(errs)
	return false
}

// SetSubmitError publica el fallo del envío; el usuario puede reintentar.
func (w *Wizard) SetSubmitError(msg string) {
	w.Errors()[FieldSubmit] = msg
}
