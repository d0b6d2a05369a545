package shipment

import (
	"regexp"
	"strings"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Service entrada del catálogo fijo de servicios adicionales.
type Service struct {
	Code  entity.ServiceCode
	Label string // descripción de la línea sintetizada
}

// El orden del catálogo es el orden de las líneas sintetizadas.
var catalog = [...]Service{
	{Code: entity.ServiceLiftGate, Label: "Lift Gate"},
	{Code: entity.ServiceAppointment, Label: "Appointment"},
	{Code: entity.ServicePalletJack, Label: "Pallet Jack"},
}

// Catalog devuelve una copia del catálogo en su orden fijo.
func Catalog() []Service {
	out := make([]Service, len(catalog))
	copy(out, catalog[:])
	return out
}

// LookupService busca un servicio por código.
func LookupService(code entity.ServiceCode) (Service, bool) {
	for _, s := range catalog {
		if s.Code == code {
			return s, true
		}
	}
	return Service{}, false
}

// ServiceItem línea derivada de un servicio activo. Nunca se guarda en el borrador.
type ServiceItem struct {
	Code        entity.ServiceCode
	Description string
	Quantity    int             // siempre 1
	Weight      decimal.Decimal // siempre 0
	Value       decimal.Decimal // precio configurado del servicio
}

// DeriveServiceItems sintetiza una línea por servicio activo, en orden de catálogo.
func DeriveServiceItems(toggles entity.ServiceToggles, prices entity.ServicePrices) []ServiceItem {
	out := make([]ServiceItem, 0, len(catalog))
	for _, s := range catalog {
		if !toggles.Enabled(s.Code) {
			continue
		}
		out = append(out, ServiceItem{
			Code:        s.Code,
			Description: s.Label,
			Quantity:    1,
			Weight:      decimal.Zero,
			Value:       ParsePrice(prices.Get(s.Code)),
		})
	}
	return out
}

// numericPrefix parte numérica inicial de un precio ("15abc" -> "15", "15,50" -> "15").
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice interpreta el precio ingresado por su prefijo numérico, como parseFloat;
// sin prefijo numérico vale 0.
func ParsePrice(raw string) decimal.Decimal {
	m := numericPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}
