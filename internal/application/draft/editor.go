package draft

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

// ItemInput datos de una línea manual tal como los envía el usuario.
type ItemInput struct {
	ID          string // solo ReplaceItems lo usa para conservar IDs existentes
	Description string
	Quantity    int
	TotalWeight decimal.Decimal
	UnitValue   decimal.Decimal
}

// Editor aplica los setters del borrador. Es el único punto de mutación:
// cada setter limpia el error previo de su campo.
type Editor struct {
	d      *entity.ShipmentDraft
	errs   ErrorMap
	newID  func() string
	limits shipment.DocumentLimits
}

// NewEditor construye un editor sobre el borrador y su mapa de errores.
func NewEditor(d *entity.ShipmentDraft, errs ErrorMap, newID func() string, limits shipment.DocumentLimits) *Editor {
	return &Editor{d: d, errs: errs, newID: newID, limits: limits}
}

// SetReference actualiza el código de referencia.
func (e *Editor) SetReference(ref string) {
	e.d.RefCode = shipment.NormalizeText(ref)
	e.errs.Clear(FieldRefCode)
}

// SetCustomerName edición libre del cliente: anula el ID del catálogo y limpia el subcliente.
func (e *Editor) SetCustomerName(name string) {
	e.d.CustomerName = shipment.NormalizeText(name)
	e.d.CustomerID = nil
	e.clearSubcustomer()
	e.errs.Clear(FieldCustomer)
}

// SelectCustomer selección desde el catálogo: fija nombre e ID y limpia el subcliente.
func (e *Editor) SelectCustomer(id, name string) {
	e.d.CustomerName = shipment.NormalizeText(name)
	e.d.CustomerID = optional(id)
	e.clearSubcustomer()
	e.errs.Clear(FieldCustomer)
}

// SetSubcustomerName edición libre del subcliente: anula su ID.
func (e *Editor) SetSubcustomerName(name string) {
	e.d.SubcustomerName = shipment.NormalizeText(name)
	e.d.SubcustomerID = nil
	e.errs.Clear(FieldSubcustomer)
}

// SelectSubcustomer selección del subcliente desde el catálogo.
func (e *Editor) SelectSubcustomer(id, name string) {
	e.d.SubcustomerName = shipment.NormalizeText(name)
	e.d.SubcustomerID = optional(id)
	e.errs.Clear(FieldSubcustomer)
}

func (e *Editor) clearSubcustomer() {
	e.d.SubcustomerName = ""
	e.d.SubcustomerID = nil
}

// SetOrigin reemplaza la ubicación de origen.
func (e *Editor) SetOrigin(loc entity.Location) {
	loc.Address = shipment.NormalizeText(loc.Address)
	e.d.Origin = loc
	e.errs.Clear(FieldOrigin)
}

// SetDestination reemplaza la ubicación de destino.
func (e *Editor) SetDestination(loc entity.Location) {
	loc.Address = shipment.NormalizeText(loc.Address)
	e.d.Destination = loc
	e.errs.Clear(FieldDestination)
}

// SetComments comentarios libres.
func (e *Editor) SetComments(c string) {
	e.d.Comments = shipment.NormalizeText(c)
	e.errs.Clear(FieldComments)
}

// SetCarrier asigna el transportista.
func (e *Editor) SetCarrier(driverID string) {
	e.d.DriverID = driverID
	e.errs.Clear(FieldDriver)
}

// SetStatus cambia el estado del ciclo de vida.
func (e *Editor) SetStatus(st entity.Status) {
	e.d.Status = st
	e.errs.Clear(FieldStatus)
}

// AddItem agrega una línea manual válida con un ID estable.
func (e *Editor) AddItem(in ItemInput) (entity.ManualItem, error) {
	it := toManualItem(in)
	if err := e.checkItem(it); err != nil {
		return entity.ManualItem{}, err
	}
	it.ID = e.newID()
	e.d.Items = append(e.d.Items, it)
	return it, nil
}

// UpdateItem reemplaza los datos de una línea conservando su ID.
func (e *Editor) UpdateItem(id string, in ItemInput) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("ítem %s: %w", id, domain.ErrNotFound)
	}
	it := toManualItem(in)
	if err := e.checkItem(it); err != nil {
		return err
	}
	it.ID = id
	e.d.Items[idx] = it
	return nil
}

// RemoveItem elimina una línea por ID.
func (e *Editor) RemoveItem(id string) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("ítem %s: %w", id, domain.ErrNotFound)
	}
	e.d.Items = append(e.d.Items[:idx], e.d.Items[idx+1:]...)
	e.errs.Clear(FieldItems)
	return nil
}

// ReplaceItems reemplaza la lista completa. Las filas totalmente vacías se aceptan
// (se descartan al guardar); cualquier otra fila debe ser válida.
func (e *Editor) ReplaceItems(in []ItemInput) error {
	items := make([]entity.ManualItem, 0, len(in))
	for _, raw := range in {
		it := toManualItem(raw)
		if !shipment.IsEmptyRow(it) {
			if err := e.checkItem(it); err != nil {
				return err
			}
		}
		it.ID = raw.ID
		if it.ID == "" {
			it.ID = e.newID()
		}
		items = append(items, it)
	}
	e.d.Items = items
	e.errs.Clear(FieldItems)
	return nil
}

func (e *Editor) checkItem(it entity.ManualItem) error {
	for k := range e.errs {
		if strings.HasPrefix(k, FieldItems+".") {
			delete(e.errs, k)
		}
	}
	fieldErrs := shipment.ValidateManualItem(it)
	if len(fieldErrs) > 0 {
		for f, msg := range fieldErrs {
			e.errs[FieldItems+"."+f] = msg
		}
		return fmt.Errorf("ítem inválido: %w", domain.ErrValidation)
	}
	e.errs.Clear(FieldItems)
	return nil
}

func (e *Editor) indexOf(id string) int {
	for i, it := range e.d.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// SetService activa o desactiva un servicio del catálogo.
func (e *Editor) SetService(code entity.ServiceCode, on bool) error {
	if !e.d.Services.Set(code, on) {
		return fmt.Errorf("servicio %q: %w", code, domain.ErrInvalidInput)
	}
	e.errs.Clear(FieldServices)
	e.errs.Clear(FieldItems)
	return nil
}

// SetServicePrice sobrescribe el precio unitario de un servicio.
func (e *Editor) SetServicePrice(code entity.ServiceCode, price string) error {
	if !e.d.Prices.Set(code, price) {
		return fmt.Errorf("servicio %q: %w", code, domain.ErrInvalidInput)
	}
	e.errs.Clear(FieldServices)
	return nil
}

// AddDocument agrega un archivo pendiente (PDF, tamaño y cantidad limitados).
func (e *Editor) AddDocument(doc entity.PendingDocument) error {
	if err := shipment.CheckDocumentCount(len(e.d.PendingDocuments)+len(e.d.Documents), 1, e.limits); err != nil {
		e.errs[FieldDocuments] = err.Error()
		return err
	}
	if err := shipment.ValidateDocument(doc.Name, doc.ContentType, doc.Size, e.limits); err != nil {
		e.errs[FieldDocuments] = err.Error()
		return err
	}
	e.d.PendingDocuments = append(e.d.PendingDocuments, doc)
	e.errs.Clear(FieldDocuments)
	return nil
}

// RemoveDocument quita un archivo pendiente por posición.
func (e *Editor) RemoveDocument(index int) error {
	if index < 0 || index >= len(e.d.PendingDocuments) {
		return fmt.Errorf("documento %d: %w", index, domain.ErrNotFound)
	}
	e.d.PendingDocuments = append(e.d.PendingDocuments[:index], e.d.PendingDocuments[index+1:]...)
	e.errs.Clear(FieldDocuments)
	return nil
}

func toManualItem(in ItemInput) entity.ManualItem {
	return entity.ManualItem{
		Description: shipment.NormalizeText(in.Description),
		Quantity:    in.Quantity,
		TotalWeight: in.TotalWeight,
		UnitValue:   in.UnitValue,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
