package draft

import (
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
)

// DraftFromShipment borrador local a partir de un snapshot del servidor.
// Clona la lista de ítems (vacía si no viene), devuelve las filas de servicio a
// toggle + precio y normaliza los documentos.
func DraftFromShipment(sh entity.Shipment, newID func() string) entity.ShipmentDraft {
	rows, prices := shipment.SplitServiceRows(sh.Items, sh.Services)
	return entity.ShipmentDraft{
		ID:              sh.ID,
		RefCode:         sh.RefCode,
		CustomerName:    sh.CustomerName,
		CustomerID:      cloneString(sh.CustomerID),
		SubcustomerName: sh.SubcustomerName,
		SubcustomerID:   cloneString(sh.SubcustomerID),
		Origin:          cloneLocation(sh.Origin),
		Destination:     cloneLocation(sh.Destination),
		Items:           shipment.ToManualItems(rows, newID),
		Services:        sh.Services,
		Prices:          prices,
		Comments:        sh.Comments,
		DriverID:        sh.DriverID,
		Status:          sh.Status,
		Documents:       shipment.NormalizeDocuments(sh.Documents),
	}
}

// SeedEditState abre el modal de edición con el registro recibido.
func SeedEditState(id, userID string, sh entity.Shipment, newID func() string, now time.Time) *entity.EditState {
	return &entity.EditState{
		ID:         id,
		UserID:     userID,
		ShipmentID: sh.ID,
		Server:     sh,
		Local:      DraftFromShipment(sh, newID),
		Errors:     map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MergeOptions etiqueta de la fusión: ItemsLocked indica que el usuario está editando ítems.
type MergeOptions struct {
	ItemsLocked bool
}

// MergeServerSnapshot fusiona un registro recién leído sobre el borrador local.
// Todos los campos vienen del servidor salvo los ítems cuando ItemsLocked está activo:
// en ese caso se conserva la lista local para no perder la edición en curso.
// Los documentos siempre se reemplazan por la lista normalizada del servidor.
func MergeServerSnapshot(local entity.ShipmentDraft, server entity.Shipment, opts MergeOptions, newID func() string) entity.ShipmentDraft {
	merged := DraftFromShipment(server, newID)
	if opts.ItemsLocked {
		merged.Items = shipment.CloneItems(local.Items)
	}
	return merged
}

// ApplyDocuments refresco solo de documentos: reemplaza Documents y nada más.
func ApplyDocuments(local entity.ShipmentDraft, docs []entity.Document) entity.ShipmentDraft {
	local.Documents = shipment.NormalizeDocuments(docs)
	return local
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneLocation(l entity.Location) entity.Location {
	return entity.Location{Address: l.Address, Lat: cloneFloat(l.Lat), Lng: cloneFloat(l.Lng)}
}
