package draft

import (
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// applyPatch pasa cada campo presente por su setter. El orden importa:
// cliente antes que subcliente, porque cambiar el cliente limpia el subcliente.
func applyPatch(e *Editor, req dto.DraftPatchRequest) {
	if req.RefCode != nil {
		e.SetReference(*req.RefCode)
	}
	if req.Customer != nil {
		e.SelectCustomer(req.Customer.ID, req.Customer.Name)
	} else if req.CustomerName != nil {
		e.SetCustomerName(*req.CustomerName)
	}
	if req.Subcustomer != nil {
		e.SelectSubcustomer(req.Subcustomer.ID, req.Subcustomer.Name)
	} else if req.SubcustomerName != nil {
		e.SetSubcustomerName(*req.SubcustomerName)
	}
	if req.Origin != nil {
		e.SetOrigin(toLocation(*req.Origin))
	}
	if req.Destination != nil {
		e.SetDestination(toLocation(*req.Destination))
	}
	if req.Comments != nil {
		e.SetComments(*req.Comments)
	}
	if req.DriverID != nil {
		e.SetCarrier(*req.DriverID)
	}
	if req.Status != nil && *req.Status != "" {
		e.SetStatus(entity.Status(*req.Status))
	}
}

func toLocation(r dto.LocationRequest) entity.Location {
	return entity.Location{Address: r.Address, Lat: cloneFloat(r.Lat), Lng: cloneFloat(r.Lng)}
}

// ToItemInput adapta el DTO de ítem.
func ToItemInput(r dto.ItemRequest) ItemInput {
	return ItemInput{
		ID:          r.ID,
		Description: r.Description,
		Quantity:    r.Quantity,
		TotalWeight: r.Weight,
		UnitValue:   r.Value,
	}
}

func toItemInputs(rs []dto.ItemRequest) []ItemInput {
	out := make([]ItemInput, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToItemInput(r))
	}
	return out
}
