package draft

import (
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

func toDraftResponse(d entity.ShipmentDraft) dto.DraftResponse {
	resp := dto.DraftResponse{
		ID:               d.ID,
		RefCode:          d.RefCode,
		CustomerName:     d.CustomerName,
		CustomerID:       d.CustomerID,
		SubcustomerName:  d.SubcustomerName,
		SubcustomerID:    d.SubcustomerID,
		Origin:           dto.LocationResponse{Address: d.Origin.Address, Lat: d.Origin.Lat, Lng: d.Origin.Lng},
		Destination:      dto.LocationResponse{Address: d.Destination.Address, Lat: d.Destination.Lat, Lng: d.Destination.Lng},
		Items:            make([]dto.ItemResponse, 0, len(d.Items)),
		Services:         make([]dto.ServiceStateResponse, 0, 3),
		ServiceItems:     []dto.ServiceLineResponse{},
		Comments:         d.Comments,
		DriverID:         d.DriverID,
		Status:           string(d.Status),
		PendingDocuments: make([]dto.PendingDocumentResponse, 0, len(d.PendingDocuments)),
		Documents:        toDocumentResponses(d.Documents),
	}
	for _, it := range d.Items {
		resp.Items = append(resp.Items, dto.ItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Weight:      it.TotalWeight,
			Value:       it.UnitValue,
			Subtotal:    it.UnitValue.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	for _, s := range shipment.Catalog() {
		resp.Services = append(resp.Services, dto.ServiceStateResponse{
			Code:    string(s.Code),
			Label:   s.Label,
			Enabled: d.Services.Enabled(s.Code),
			Price:   d.Prices.Get(s.Code),
		})
	}
	for _, s := range shipment.DeriveServiceItems(d.Services, d.Prices) {
		resp.ServiceItems = append(resp.ServiceItems, dto.ServiceLineResponse{
			Code:        string(s.Code),
			Description: s.Description,
			Quantity:    s.Quantity,
			Weight:      s.Weight,
			Value:       s.Value,
		})
	}
	for i, p := range d.PendingDocuments {
		resp.PendingDocuments = append(resp.PendingDocuments, dto.PendingDocumentResponse{
			Index:       i,
			Name:        p.Name,
			ContentType: p.ContentType,
			Size:        p.Size,
		})
	}
	return resp
}

func toDocumentResponses(docs []entity.Document) []dto.DocumentResponse {
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range shipment.NormalizeDocuments(docs) {
		out = append(out, dto.DocumentResponse{ID: d.ID, Name: d.Name, FileContent: d.FileContent})
	}
	return out
}

func toTotalsResponse(t shipment.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{Quantity: t.Quantity, Weight: t.Weight, Value: t.Value}
}

func copyErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

func toWizardResponse(st *entity.WizardState) *dto.WizardResponse {
	steps := make([]string, len(StepNames))
	copy(steps, StepNames)
	return &dto.WizardResponse{
		ID:         st.ID,
		Step:       st.Step,
		StepName:   StepNames[st.Step],
		Steps:      steps,
		CanProceed: CanProceed(st.Step, st.Draft),
		Draft:      toDraftResponse(st.Draft),
		Totals:     toTotalsResponse(shipment.DraftTotals(st.Draft)),
		Errors:     copyErrors(st.Errors),
		UpdatedAt:  st.UpdatedAt,
	}
}

func toEditResponse(st *entity.EditState, sess entity.Session, uploading bool) *dto.EditSessionResponse {
	return &dto.EditSessionResponse{
		ID:           st.ID,
		ShipmentID:   st.ShipmentID,
		EditingItems: st.EditingItems,
		Editable:     shipment.CanEdit(sess.Role, st.Server.Status),
		Uploading:    uploading,
		Draft:        toDraftResponse(st.Local),
		Totals:       toTotalsResponse(shipment.DraftTotals(st.Local)),
		Errors:       copyErrors(st.Errors),
		UpdatedAt:    st.UpdatedAt,
	}
}

func toShipmentResponse(sh *entity.Shipment) dto.ShipmentResponse {
	return dto.ShipmentResponse{
		ID:           sh.ID,
		RefCode:      sh.RefCode,
		Status:       string(sh.Status),
		ShippingCost: sh.ShippingCost,
		Documents:    toDocumentResponses(sh.Documents),
	}
}
