package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status estado del ciclo de vida de un envío. Fuera de los terminales se trata como opaco.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered" // terminal
	StatusCancelled Status = "cancelled" // terminal
)

// Location dirección con coordenadas opcionales (nil = sin geocodificar).
type Location struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// ShipmentItem línea tal como la devuelve el servicio remoto (incluye filas de servicios ya materializadas).
type ShipmentItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Weight      decimal.Decimal `json:"weight"`
	Value       decimal.Decimal `json:"value"`
}

// Document documento adjunto ya persistido en el servidor.
// FileContent se normaliza en cada lectura: file_content ?? path ?? url ?? "".
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FileContent string    `json:"file_content"`
	Path        string    `json:"path,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Shipment snapshot autoritativo del servidor. Se reemplaza completo en cada lectura exitosa.
type Shipment struct {
	ID              string          `json:"id"`
	RefCode         string          `json:"ref_code"`
	CustomerName    string          `json:"customer"`
	CustomerID      *string         `json:"client_id"`
	SubcustomerName string          `json:"subclient"`
	SubcustomerID   *string         `json:"subclient_id"`
	Origin          Location        `json:"origin"`
	Destination     Location        `json:"destination"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	DriverID        string          `json:"driver_id"`
	Status          Status          `json:"status"`
	Services        ServiceToggles  `json:"services"`
	Comments        string          `json:"comments"`
	Items           []ShipmentItem  `json:"items"`
	Documents       []Document      `json:"documents"`
	UpdatedAt       time.Time       `json:"updated_at,omitempty"`
}
