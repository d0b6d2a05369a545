package shipment

import (
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Totals agregados derivados del borrador. Se recalculan en cada lectura.
type Totals struct {
	Quantity int             `json:"quantity"`
	Weight   decimal.Decimal `json:"weight"`
	Value    decimal.Decimal `json:"value"`
}

// ComputeTotals suma cantidades, pesos y valores sobre ítems manuales y de servicio.
// El peso de cada línea cuenta una sola vez (ya es el total de la línea);
// el valor se multiplica por la cantidad.
func ComputeTotals(manual []entity.ManualItem, services []ServiceItem) Totals {
	t := Totals{Weight: decimal.Zero, Value: decimal.Zero}
	for _, it := range manual {
		t.Quantity += it.Quantity
		t.Weight = t.Weight.Add(it.TotalWeight)
		t.Value = t.Value.Add(it.UnitValue.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	for _, it := range services {
		t.Quantity += it.Quantity
		t.Weight = t.Weight.Add(it.Weight)
		t.Value = t.Value.Add(it.Value.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return t
}

// DraftTotals totales de un borrador a partir de su estado actual.
func DraftTotals(d entity.ShipmentDraft) Totals {
	return ComputeTotals(d.Items, DeriveServiceItems(d.Services, d.Prices))
}
