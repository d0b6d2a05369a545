package shipment

import (
	"strings"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"golang.org/x/text/unicode/norm"
)

// Claves de error por campo de una línea manual.
const (
	ItemFieldDescription = "description"
	ItemFieldQuantity    = "quantity"
	ItemFieldWeight      = "weight"
	ItemFieldValue       = "value"
)

// ValidateManualItem devuelve los errores por campo de una línea; vacío si es válida.
func ValidateManualItem(it entity.ManualItem) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(it.Description) == "" {
		errs[ItemFieldDescription] = "la descripción es obligatoria"
	}
	if it.Quantity < 1 {
		errs[ItemFieldQuantity] = "la cantidad debe ser al menos 1"
	}
	if it.TotalWeight.IsNegative() {
		errs[ItemFieldWeight] = "el peso no puede ser negativo"
	}
	if it.UnitValue.IsNegative() {
		errs[ItemFieldValue] = "el valor no puede ser negativo"
	}
	return errs
}

// IsEmptyRow una fila completamente vacía: sin descripción y con cantidad, peso y valor <= 0.
func IsEmptyRow(it entity.ManualItem) bool {
	return strings.TrimSpace(it.Description) == "" &&
		it.Quantity <= 0 &&
		!it.TotalWeight.IsPositive() &&
		!it.UnitValue.IsPositive()
}

// CloneItems copia defensiva de la lista de ítems (nunca nil).
func CloneItems(items []entity.ManualItem) []entity.ManualItem {
	out := make([]entity.ManualItem, len(items))
	copy(out, items)
	return out
}

// SplitServiceRows separa las filas de servicio que el servidor guardó dentro de items[]
// (cantidad 1, peso 0, descripción igual a la etiqueta del catálogo) para que vuelvan
// a ser toggle + precio. Solo se reconoce una fila por servicio activo.
func SplitServiceRows(items []entity.ShipmentItem, toggles entity.ServiceToggles) ([]entity.ShipmentItem, entity.ServicePrices) {
	var prices entity.ServicePrices
	taken := make([]bool, len(items))
	for _, s := range catalog {
		if !toggles.Enabled(s.Code) {
			continue
		}
		for i, it := range items {
			if taken[i] || it.Quantity != 1 || !it.Weight.IsZero() {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(it.Description), s.Label) {
				taken[i] = true
				prices.Set(s.Code, it.Value.String())
				break
			}
		}
	}
	manual := make([]entity.ShipmentItem, 0, len(items))
	for i, it := range items {
		if !taken[i] {
			manual = append(manual, it)
		}
	}
	return manual, prices
}

// ToManualItems convierte líneas del servidor en ítems manuales con IDs de cliente nuevos.
func ToManualItems(items []entity.ShipmentItem, newID func() string) []entity.ManualItem {
	out := make([]entity.ManualItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.ManualItem{
			ID:          newID(),
			Description: it.Description,
			Quantity:    it.Quantity,
			TotalWeight: it.Weight,
			UnitValue:   it.Value,
		})
	}
	return out
}

// NormalizeText normaliza texto libre a NFC (acentos compuestos y descompuestos comparan igual).
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
