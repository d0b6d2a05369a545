package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectionRequest selección de cliente o subcliente desde el catálogo.
type SelectionRequest struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=200"`
}

// LocationRequest dirección con coordenadas opcionales.
type LocationRequest struct {
	Address string   `json:"address" validate:"max=500"`
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

// DraftPatchRequest body para PATCH /api/drafts/:id y PATCH /api/edits/:id.
// Solo se aplican los campos presentes; cada uno pasa por su setter.
type DraftPatchRequest struct {
	RefCode         *string           `json:"ref_code" validate:"omitempty,max=100"`
	CustomerName    *string           `json:"customer_name" validate:"omitempty,max=200"`
	Customer        *SelectionRequest `json:"customer"`
	SubcustomerName *string           `json:"subcustomer_name" validate:"omitempty,max=200"`
	Subcustomer     *SelectionRequest `json:"subcustomer"`
	Origin          *LocationRequest  `json:"origin"`
	Destination     *LocationRequest  `json:"destination"`
	Comments        *string           `json:"comments" validate:"omitempty,max=2000"`
	DriverID        *string           `json:"driver_id" validate:"omitempty,max=64"`
	Status          *string           `json:"status" validate:"omitempty,max=32"`
}

// ItemRequest línea manual. weight es el peso total de la línea; value es por unidad.
type ItemRequest struct {
	ID          string          `json:"id,omitempty" validate:"omitempty,max=64"`
	Description string          `json:"description" validate:"max=500"`
	Quantity    int             `json:"quantity" validate:"gte=0,lte=1000000"`
	Weight      decimal.Decimal `json:"weight"`
	Value       decimal.Decimal `json:"value"`
}

// ItemsRequest reemplazo completo de la lista (modal de edición).
type ItemsRequest struct {
	Items []ItemRequest `json:"items" validate:"dive"`
}

// ServiceRequest body para PUT /api/drafts/:id/services/:code.
type ServiceRequest struct {
	Enabled *bool   `json:"enabled"`
	Price   *string `json:"price" validate:"omitempty,max=32"`
}

// LocationResponse ubicación en respuestas.
type LocationResponse struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// ItemResponse línea manual con su subtotal (valor × cantidad).
type ItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Weight      decimal.Decimal `json:"weight"`
	Value       decimal.Decimal `json:"value"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ServiceStateResponse estado de un servicio del catálogo.
type ServiceStateResponse struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Price   string `json:"price"`
}

// ServiceLineResponse línea sintetizada de un servicio activo (derivada, no almacenada).
type ServiceLineResponse struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Weight      decimal.Decimal `json:"weight"`
	Value       decimal.Decimal `json:"value"`
}

// DocumentResponse documento del servidor con file_content ya resuelto.
type DocumentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FileContent string `json:"file_content"`
}

// PendingDocumentResponse archivo pendiente (sin contenido).
type PendingDocumentResponse struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// TotalsResponse totales derivados.
type TotalsResponse struct {
	Quantity int             `json:"quantity"`
	Weight   decimal.Decimal `json:"weight"`
	Value    decimal.Decimal `json:"value"`
}

// DraftResponse vista del borrador.
type DraftResponse struct {
	ID               string                    `json:"id,omitempty"`
	RefCode          string                    `json:"ref_code"`
	CustomerName     string                    `json:"customer_name"`
	CustomerID       *string                   `json:"customer_id"`
	SubcustomerName  string                    `json:"subcustomer_name"`
	SubcustomerID    *string                   `json:"subcustomer_id"`
	Origin           LocationResponse          `json:"origin"`
	Destination      LocationResponse          `json:"destination"`
	Items            []ItemResponse            `json:"items"`
	Services         []ServiceStateResponse    `json:"services"`
	ServiceItems     []ServiceLineResponse     `json:"service_items"`
	Comments         string                    `json:"comments"`
	DriverID         string                    `json:"driver_id"`
	Status           string                    `json:"status"`
	PendingDocuments []PendingDocumentResponse `json:"pending_documents"`
	Documents        []DocumentResponse        `json:"documents"`
}

// WizardResponse estado del asistente de creación.
type WizardResponse struct {
	ID         string            `json:"id"`
	Step       int               `json:"step"`
	StepName   string            `json:"step_name"`
	Steps      []string          `json:"steps"`
	CanProceed bool              `json:"can_proceed"`
	Draft      DraftResponse     `json:"draft"`
	Totals     TotalsResponse    `json:"totals"`
	Errors     map[string]string `json:"errors"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// EditSessionResponse estado del modal de edición.
type EditSessionResponse struct {
	ID           string            `json:"id"`
	ShipmentID   string            `json:"shipment_id"`
	EditingItems bool              `json:"editing_items"`
	Editable     bool              `json:"editable"`
	Uploading    bool              `json:"uploading"`
	Draft        DraftResponse     `json:"draft"`
	Totals       TotalsResponse    `json:"totals"`
	Errors       map[string]string `json:"errors"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ShipmentResponse registro devuelto por el servicio remoto tras un alta.
type ShipmentResponse struct {
	ID           string             `json:"id"`
	RefCode      string             `json:"ref_code"`
	Status       string             `json:"status"`
	ShippingCost decimal.Decimal    `json:"shipping_cost"`
	Documents    []DocumentResponse `json:"documents"`
}

// DraftSummaryResponse fila de GET /api/drafts.
type DraftSummaryResponse struct {
	ID         string          `json:"id"`
	RefCode    string          `json:"ref_code"`
	Step       int             `json:"step"`
	TotalValue decimal.Decimal `json:"total_value"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DraftListResponse asistentes pendientes del usuario.
type DraftListResponse struct {
	Drafts []DraftSummaryResponse `json:"drafts"`
}

// SubmitResponse respuesta de POST /api/drafts/:id/submit.
type SubmitResponse struct {
	Shipment ShipmentResponse `json:"shipment"`
}

// UploadResultResponse resultado por archivo de una carga múltiple.
type UploadResultResponse struct {
	Uploaded []string            `json:"uploaded"`
	Failed   map[string]string   `json:"failed"`
	Session  EditSessionResponse `json:"session"`
}
