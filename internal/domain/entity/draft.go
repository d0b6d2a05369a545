package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCode identifica un servicio adicional del catálogo.
type ServiceCode string

const (
	ServiceLiftGate    ServiceCode = "lift_gate"
	ServiceAppointment ServiceCode = "appointment"
	ServicePalletJack  ServiceCode = "pallet_jack"
)

// ServiceToggles servicios adicionales activados en el borrador.
type ServiceToggles struct {
	LiftGate    bool `json:"lift_gate"`
	Appointment bool `json:"appointment"`
	PalletJack  bool `json:"pallet_jack"`
}

// Enabled indica si el servicio está activo. Códigos desconocidos devuelven false.
func (t ServiceToggles) Enabled(code ServiceCode) bool {
	switch code {
	case ServiceLiftGate:
		return t.LiftGate
	case ServiceAppointment:
		return t.Appointment
	case ServicePalletJack:
		return t.PalletJack
	}
	return false
}

// Set activa o desactiva un servicio; devuelve false si el código no existe.
func (t *ServiceToggles) Set(code ServiceCode, on bool) bool {
	switch code {
	case ServiceLiftGate:
		t.LiftGate = on
	case ServiceAppointment:
		t.Appointment = on
	case ServicePalletJack:
		t.PalletJack = on
	default:
		return false
	}
	return true
}

// Any indica si hay al menos un servicio activo.
func (t ServiceToggles) Any() bool {
	return t.LiftGate || t.Appointment || t.PalletJack
}

// ServicePrices precio unitario editable por servicio. Se guarda como texto tal cual lo ingresó el usuario.
type ServicePrices struct {
	LiftGate    string `json:"lift_gate"`
	Appointment string `json:"appointment"`
	PalletJack  string `json:"pallet_jack"`
}

// Get devuelve el precio (texto) del servicio.
func (p ServicePrices) Get(code ServiceCode) string {
	switch code {
	case ServiceLiftGate:
		return p.LiftGate
	case ServiceAppointment:
		return p.Appointment
	case ServicePalletJack:
		return p.PalletJack
	}
	return ""
}

// Set actualiza el precio; devuelve false si el código no existe.
func (p *ServicePrices) Set(code ServiceCode, price string) bool {
	switch code {
	case ServiceLiftGate:
		p.LiftGate = price
	case ServiceAppointment:
		p.Appointment = price
	case ServicePalletJack:
		p.PalletJack = price
	default:
		return false
	}
	return true
}

// ManualItem línea ingresada por el usuario.
// TotalWeight es el peso ya agregado de la línea (no por unidad); UnitValue sí es por unidad.
type ManualItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	UnitValue   decimal.Decimal `json:"unit_value"`
}

// PendingDocument archivo aún no enviado al servidor.
type PendingDocument struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Content     []byte `json:"content"`
}

// ShipmentDraft estado mutable de trabajo del asistente o del modal de edición.
type ShipmentDraft struct {
	ID               string            `json:"id,omitempty"` // solo al editar un envío existente
	RefCode          string            `json:"ref_code"`
	CustomerName     string            `json:"customer_name"`
	CustomerID       *string           `json:"customer_id"`
	SubcustomerName  string            `json:"subcustomer_name"`
	SubcustomerID    *string           `json:"subcustomer_id"`
	Origin           Location          `json:"origin"`
	Destination      Location          `json:"destination"`
	Items            []ManualItem      `json:"items"`
	Services         ServiceToggles    `json:"services"`
	Prices           ServicePrices     `json:"prices"`
	Comments         string            `json:"comments"`
	DriverID         string            `json:"driver_id"`
	Status           Status            `json:"status"`
	PendingDocuments []PendingDocument `json:"pending_documents,omitempty"`
	Documents        []Document        `json:"documents"`
}

// WizardState asistente de creación persistido entre peticiones.
type WizardState struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Step      int               `json:"step"`
	Draft     ShipmentDraft     `json:"draft"`
	Errors    map[string]string `json:"errors"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DraftSummary fila del listado de asistentes pendientes de un usuario.
type DraftSummary struct {
	ID         string
	RefCode    string
	Step       int
	TotalValue decimal.Decimal
	UpdatedAt  time.Time
}

// EditState sesión del modal de edición: snapshot del servidor y borrador local son distintos.
type EditState struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	ShipmentID   string            `json:"shipment_id"`
	Server       Shipment          `json:"server"`
	Local        ShipmentDraft     `json:"local"`
	EditingItems bool              `json:"editing_items"`
	Errors       map[string]string `json:"errors"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
