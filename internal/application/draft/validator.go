package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Claves del mapa de errores por campo.
const (
	FieldRefCode     = "ref_code"
	FieldCustomer    = "customer"
	FieldSubcustomer = "subcustomer"
	FieldOrigin      = "origin_address"
	FieldDestination = "destination_address"
	FieldItems       = "items"
	FieldServices    = "services"
	FieldDriver      = "driver_id"
	FieldComments    = "comments"
	FieldStatus      = "status"
	FieldDocuments   = "documents"
	FieldSubmit      = "submit"
)

// Pasos del asistente de creación, en orden.
const (
	StepParty = iota
	StepAddresses
	StepItems
	StepCarrier
	StepDocuments
)

// StepNames nombres de los pasos; el índice es el número de paso.
var StepNames = []string{"party", "addresses", "items", "carrier", "documents"}

// LastStep índice del paso terminal (envío).
var LastStep = len(StepNames) - 1

// ErrorMap errores de validación campo → mensaje. Son orientativos: editar el campo los limpia.
type ErrorMap map[string]string

// Clear elimina el error de un campo.
func (e ErrorMap) Clear(field string) {
	delete(e, field)
}

// Merge copia los errores de otro mapa.
func (e ErrorMap) Merge(other ErrorMap) {
	for k, v := range other {
		e[k] = v
	}
}

const (
	msgRefCode     = "el código de referencia es obligatorio"
	msgCustomer    = "el cliente es obligatorio"
	msgOrigin      = "la dirección de origen es obligatoria"
	msgDestination = "la dirección de destino es obligatoria"
	msgItems       = "agregue al menos un ítem o active un servicio"
	msgDriver      = "seleccione un transportista"
	msgSummary     = "revise los campos marcados antes de enviar"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func hasItemsOrServices(d entity.ShipmentDraft) bool {
	return len(d.Items) > 0 || d.Services.Any()
}

// ValidateStep errores que impiden avanzar desde el paso indicado.
// El paso de documentos es opcional; un paso inexistente no tiene errores.
func ValidateStep(step int, d entity.ShipmentDraft) ErrorMap {
	errs := ErrorMap{}
	switch step {
	case StepParty:
		if blank(d.CustomerName) {
			errs[FieldCustomer] = msgCustomer
		}
		if blank(d.RefCode) {
			errs[FieldRefCode] = msgRefCode
		}
	case StepAddresses:
		if blank(d.Origin.Address) {
			errs[FieldOrigin] = msgOrigin
		}
		if blank(d.Destination.Address) {
			errs[FieldDestination] = msgDestination
		}
	case StepItems:
		if !hasItemsOrServices(d) {
			errs[FieldItems] = msgItems
		}
	case StepCarrier:
		if blank(d.DriverID) {
			errs[FieldDriver] = msgDriver
		}
	}
	return errs
}

// CanProceed indica si el paso actual permite avanzar.
func CanProceed(step int, d entity.ShipmentDraft) bool {
	return len(ValidateStep(step, d)) == 0
}

// ValidateForSubmit validación final, independiente del paso actual.
// Si hay errores agrega un resumen bajo FieldSubmit.
func ValidateForSubmit(d entity.ShipmentDraft) ErrorMap {
	errs := ErrorMap{}
	for step := range StepNames {
		errs.Merge(ValidateStep(step, d))
	}
	if len(errs) > 0 {
		errs[FieldSubmit] = msgSummary
	}
	return errs
}

// ValidationError errores por campo de una operación rechazada.
// errors.Is(err, domain.ErrValidation) es verdadero; Cause conserva el error
// concreto (p. ej. ErrDocumentType) cuando lo hay.
type ValidationError struct {
	Fields map[string]string
	Cause  error
}

func newValidationError(errs ErrorMap) *ValidationError {
	fields := make(map[string]string, len(errs))
	for k, v := range errs {
		fields[k] = v
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s (%d campos)", domain.ErrValidation.Error(), len(e.Fields))
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{domain.ErrValidation}
	}
	return []error{domain.ErrValidation, e.Cause}
}

// fieldError convierte un fallo de validación en ValidationError con el mapa actual.
func fieldError(errs ErrorMap, err error) error {
	var ve *ValidationError
	if err == nil || errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrDocumentLimit) ||
		errors.Is(err, domain.ErrDocumentTooLarge) || errors.Is(err, domain.ErrDocumentType) {
		ve = newValidationError(errs)
		ve.Cause = err
		return ve
	}
	return err
}
