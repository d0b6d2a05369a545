package draft

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

// WireItem línea en el formato que espera el servicio de envíos.
// Peso y valor viajan como número JSON exacto (sin pasar por float64).
type WireItem struct {
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	Weight      json.Number `json:"weight"`
	Value       json.Number `json:"value"`
}

// FormField campo de un formulario multipart, en orden de envío.
type FormField struct {
	Name  string
	Value string
}

// CreatePayload cuerpo multipart del alta de un envío.
type CreatePayload struct {
	RefCode            string
	Customer           string
	ClientID           string
	SubclientID        string
	Subclient          string
	OriginAddress      string
	OriginLat          string
	OriginLng          string
	DestinationAddress string
	DestinationLat     string
	DestinationLng     string
	ShippingCost       string
	DriverID           string
	Status             string
	LiftGate           string
	Appointment        string
	PalletJack         string
	Comments           string
	Items              []WireItem
	Documents          []entity.PendingDocument
}

// Fields campos de texto del formulario; items va codificado como arreglo JSON.
// client_id, subclient_id y subclient solo se envían si tienen valor.
func (p *CreatePayload) Fields() ([]FormField, error) {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return nil, fmt.Errorf("codificar items: %w", err)
	}
	fields := []FormField{
		{"ref_code", p.RefCode},
		{"customer", p.Customer},
		{"origin_address", p.OriginAddress},
		{"origin_lat", p.OriginLat},
		{"origin_lng", p.OriginLng},
		{"destination_address", p.DestinationAddress},
		{"destination_lat", p.DestinationLat},
		{"destination_lng", p.DestinationLng},
		{"shipping_cost", p.ShippingCost},
		{"driver_id", p.DriverID},
		{"status", p.Status},
		{"lift_gate", p.LiftGate},
		{"appointment", p.Appointment},
		{"pallet_jack", p.PalletJack},
		{"comments", p.Comments},
		{"items", string(items)},
	}
	if p.ClientID != "" {
		fields = append(fields, FormField{"client_id", p.ClientID})
	}
	if p.SubclientID != "" {
		fields = append(fields, FormField{"subclient_id", p.SubclientID})
	}
	if p.Subclient != "" {
		fields = append(fields, FormField{"subclient", p.Subclient})
	}
	return fields, nil
}

// UpdatePayload cuerpo JSON de PUT /shipment/{id}.
type UpdatePayload struct {
	RefCode            string     `json:"ref_code"`
	Customer           string     `json:"customer"`
	ClientID           *string    `json:"client_id"`
	Subclient          string     `json:"subclient"`
	SubclientID        *string    `json:"subclient_id"`
	OriginAddress      string     `json:"origin_address"`
	OriginLat          string     `json:"origin_lat"`
	OriginLng          string     `json:"origin_lng"`
	DestinationAddress string     `json:"destination_address"`
	DestinationLat     string     `json:"destination_lat"`
	DestinationLng     string     `json:"destination_lng"`
	ShippingCost       string     `json:"shipping_cost"`
	DriverID           string     `json:"driver_id"`
	Status             string     `json:"status"`
	LiftGate           string     `json:"lift_gate"`
	Appointment        string     `json:"appointment"`
	PalletJack         string     `json:"pallet_jack"`
	Comments           string     `json:"comments"`
	Items              []WireItem `json:"items"`
	AdminOverride      bool       `json:"admin_override,omitempty"`
}

// FilterEmptyItems descarta filas totalmente vacías antes de armar el payload.
func FilterEmptyItems(items []entity.ManualItem) []entity.ManualItem {
	out := make([]entity.ManualItem, 0, len(items))
	for _, it := range items {
		if shipment.IsEmptyRow(it) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// WireItems líneas manuales filtradas seguidas de una línea por servicio activo.
func WireItems(d entity.ShipmentDraft) []WireItem {
	manual := FilterEmptyItems(d.Items)
	services := shipment.DeriveServiceItems(d.Services, d.Prices)
	out := make([]WireItem, 0, len(manual)+len(services))
	for _, it := range manual {
		out = append(out, WireItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			Weight:      number(it.TotalWeight),
			Value:       number(it.UnitValue),
		})
	}
	for _, s := range services {
		out = append(out, WireItem{
			Description: s.Description,
			Quantity:    s.Quantity,
			Weight:      number(s.Weight),
			Value:       number(s.Value),
		})
	}
	return out
}

// ShippingCost Σ(valor × cantidad) sobre las líneas ya filtradas.
func ShippingCost(items []WireItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		v, err := decimal.NewFromString(it.Value.String())
		if err != nil {
			continue
		}
		total = total.Add(v.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// FormatCoordinate coordenada como texto; "0" si no hay valor.
func FormatCoordinate(c *float64) string {
	if c == nil {
		return "0"
	}
	return strconv.FormatFloat(*c, 'f', -1, 64)
}

// YesNo bandera de servicio en el formato del servicio remoto.
func YesNo(on bool) string {
	if on {
		return "YES"
	}
	return "NO"
}

// BuildCreatePayload payload de alta. El costo de envío es un valor fijo
// (placeholder) y no se recalcula a partir de los ítems.
func BuildCreatePayload(d entity.ShipmentDraft, placeholderCost decimal.Decimal) *CreatePayload {
	status := d.Status
	if status == "" {
		status = entity.StatusPending
	}
	docs := make([]entity.PendingDocument, len(d.PendingDocuments))
	copy(docs, d.PendingDocuments)
	return &CreatePayload{
		RefCode:            d.RefCode,
		Customer:           d.CustomerName,
		ClientID:           deref(d.CustomerID),
		SubclientID:        deref(d.SubcustomerID),
		Subclient:          d.SubcustomerName,
		OriginAddress:      d.Origin.Address,
		OriginLat:          FormatCoordinate(d.Origin.Lat),
		OriginLng:          FormatCoordinate(d.Origin.Lng),
		DestinationAddress: d.Destination.Address,
		DestinationLat:     FormatCoordinate(d.Destination.Lat),
		DestinationLng:     FormatCoordinate(d.Destination.Lng),
		ShippingCost:       placeholderCost.StringFixed(2),
		DriverID:           d.DriverID,
		Status:             string(status),
		LiftGate:           YesNo(d.Services.LiftGate),
		Appointment:        YesNo(d.Services.Appointment),
		PalletJack:         YesNo(d.Services.PalletJack),
		Comments:           d.Comments,
		Items:              WireItems(d),
		Documents:          docs,
	}
}

// BuildUpdatePayload payload de edición. El costo de envío se recalcula sobre la
// lista filtrada; el administrador adjunta la bandera que permite editar envíos terminales.
func BuildUpdatePayload(d entity.ShipmentDraft, sess entity.Session) *UpdatePayload {
	items := WireItems(d)
	return &UpdatePayload{
		RefCode:            d.RefCode,
		Customer:           d.CustomerName,
		ClientID:           cloneString(d.CustomerID),
		Subclient:          d.SubcustomerName,
		SubclientID:        cloneString(d.SubcustomerID),
		OriginAddress:      d.Origin.Address,
		OriginLat:          FormatCoordinate(d.Origin.Lat),
		OriginLng:          FormatCoordinate(d.Origin.Lng),
		DestinationAddress: d.Destination.Address,
		DestinationLat:     FormatCoordinate(d.Destination.Lat),
		DestinationLng:     FormatCoordinate(d.Destination.Lng),
		ShippingCost:       ShippingCost(items).StringFixed(2),
		DriverID:           d.DriverID,
		Status:             string(d.Status),
		LiftGate:           YesNo(d.Services.LiftGate),
		Appointment:        YesNo(d.Services.Appointment),
		PalletJack:         YesNo(d.Services.PalletJack),
		Comments:           d.Comments,
		Items:              items,
		AdminOverride:      sess.IsAdmin(),
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
