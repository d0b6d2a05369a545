package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ── Formato del servicio de envíos ──────────────────────────────────────────
// El servicio devuelve los numéricos a veces como número y a veces como texto
// ("12.5", "0"), e IDs numéricos o UUID. Los tipos flex* aceptan ambas formas.

// envelope {ok, data, message}. Algunas rutas responden el objeto sin envolver.
type envelope struct {
	OK      *bool           `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// unwrap devuelve data si el cuerpo viene envuelto; si no, el cuerpo completo.
// El sobre se devuelve siempre que el cuerpo sea un objeto, para leer message en errores.
func unwrap(body []byte) (json.RawMessage, *envelope) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body, nil
	}
	if env.OK == nil && len(env.Data) == 0 {
		return body, &env
	}
	return env.Data, &env
}

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(string(b))
	return nil
}

type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		d.Decimal = decimal.Zero
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		d.Decimal = decimal.Zero
		return nil
	}
	d.Decimal = v
	return nil
}

type flexInt int

func (i *flexInt) UnmarshalJSON(b []byte) error {
	var d flexDecimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*i = flexInt(d.IntPart())
	return nil
}

// flexFloat coordenada opcional; ausente, null o vacía queda en nil.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		f.v = nil
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.v = nil
		return nil
	}
	f.v = &v
	return nil
}

// flexYesNo bandera "YES"/"NO", booleano o 1/0.
type flexYesNo bool

func (y *flexYesNo) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "yes", "true", "1", "si", "sí":
		*y = true
	default:
		*y = false
	}
	return nil
}

// flexTime fecha RFC 3339 o "2006-01-02 15:04:05"; un formato desconocido queda en cero.
type flexTime struct {
	t time.Time
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			f.t = t
			return nil
		}
	}
	f.t = time.Time{}
	return nil
}

type wireItem struct {
	Description string      `json:"description"`
	Quantity    flexInt     `json:"quantity"`
	Weight      flexDecimal `json:"weight"`
	Value       flexDecimal `json:"value"`
}

type wireDocument struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	FileName    string     `json:"file_name"`
	FileContent *string    `json:"file_content"`
	Path        *string    `json:"path"`
	URL         *string    `json:"url"`
	CreatedAt   flexTime   `json:"created_at"`
}

type wireShipment struct {
	ID                 flexString      `json:"id"`
	RefCode            string          `json:"ref_code"`
	Customer           string          `json:"customer"`
	ClientID           flexString      `json:"client_id"`
	Subclient          string          `json:"subclient"`
	SubclientID        flexString      `json:"subclient_id"`
	OriginAddress      string          `json:"origin_address"`
	OriginLat          flexFloat       `json:"origin_lat"`
	OriginLng          flexFloat       `json:"origin_lng"`
	DestinationAddress string          `json:"destination_address"`
	DestinationLat     flexFloat       `json:"destination_lat"`
	DestinationLng     flexFloat       `json:"destination_lng"`
	ShippingCost       flexDecimal     `json:"shipping_cost"`
	DriverID           flexString      `json:"driver_id"`
	Status             string          `json:"status"`
	LiftGate           flexYesNo       `json:"lift_gate"`
	Appointment        flexYesNo       `json:"appointment"`
	PalletJack         flexYesNo       `json:"pallet_jack"`
	Comments           string          `json:"comments"`
	Items              json.RawMessage `json:"items"`
	Documents          []wireDocument  `json:"documents"`
	UpdatedAt          flexTime        `json:"updated_at"`
}

// decodeItems acepta un arreglo o un arreglo codificado como texto; cualquier
// otra cosa se trata como lista vacía.
func decodeItems(raw json.RawMessage) []entity.ShipmentItem {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			raw = []byte(s)
		}
	}
	var items []wireItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return []entity.ShipmentItem{}
	}
	out := make([]entity.ShipmentItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.ShipmentItem{
			Description: it.Description,
			Quantity:    int(it.Quantity),
			Weight:      it.Weight.Decimal,
			Value:       it.Value.Decimal,
		})
	}
	return out
}

func (d wireDocument) toEntity() entity.Document {
	doc := entity.Document{ID: string(d.ID), Name: d.Name}
	if doc.Name == "" {
		doc.Name = d.FileName
	}
	if d.FileContent != nil {
		doc.FileContent = *d.FileContent
	}
	if d.Path != nil {
		doc.Path = *d.Path
	}
	if d.URL != nil {
		doc.URL = *d.URL
	}
	doc.CreatedAt = d.CreatedAt.t
	return doc
}

func toDocuments(ws []wireDocument) []entity.Document {
	out := make([]entity.Document, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toEntity())
	}
	return out
}

func optionalID(s flexString) *string {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return nil
	}
	return &v
}

func (w wireShipment) toEntity() *entity.Shipment {
	sh := &entity.Shipment{
		ID:              string(w.ID),
		RefCode:         w.RefCode,
		CustomerName:    w.Customer,
		CustomerID:      optionalID(w.ClientID),
		SubcustomerName: w.Subclient,
		SubcustomerID:   optionalID(w.SubclientID),
		Origin:          entity.Location{Address: w.OriginAddress, Lat: w.OriginLat.v, Lng: w.OriginLng.v},
		Destination:     entity.Location{Address: w.DestinationAddress, Lat: w.DestinationLat.v, Lng: w.DestinationLng.v},
		ShippingCost:    w.ShippingCost.Decimal,
		DriverID:        string(w.DriverID),
		Status:          entity.Status(w.Status),
		Services: entity.ServiceToggles{
			LiftGate:    bool(w.LiftGate),
			Appointment: bool(w.Appointment),
			PalletJack:  bool(w.PalletJack),
		},
		Comments:  w.Comments,
		Items:     decodeItems(w.Items),
		Documents: toDocuments(w.Documents),
	}
	sh.UpdatedAt = w.UpdatedAt.t
	return sh
}
