package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// EditHandler modal de edición de envíos existentes (protegido).
type EditHandler struct {
	uc  *draft.EditUseCase
	log zerolog.Logger
}

// NewEditHandler construye el handler.
func NewEditHandler(uc *draft.EditUseCase, log zerolog.Logger) *EditHandler {
	return &EditHandler{uc: uc, log: log}
}

// Open carga el envío del servicio remoto y abre una sesión de edición.
// POST /api/shipments/:id/edit
func (h *EditHandler) Open(c *fiber.Ctx) error {
	resp, err := h.uc.Open(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusCreated, resp, err)
}

// Get GET /api/edits/:id
func (h *EditHandler) Get(c *fiber.Ctx) error {
	resp, err := h.uc.Get(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Patch PATCH /api/edits/:id
func (h *EditHandler) Patch(c *fiber.Ctx) error {
	var in dto.DraftPatchRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.Patch(c.UserContext(), GetSession(c), c.Params("id"), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// SetService PUT /api/edits/:id/services/:code
func (h *EditHandler) SetService(c *fiber.Ctx) error {
	var in dto.ServiceRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.SetService(c.UserContext(), GetSession(c), c.Params("id"), entity.ServiceCode(c.Params("code")), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// BeginItemsEdit bloquea los ítems frente a recargas del servidor.
// POST /api/edits/:id/items/edit
func (h *EditHandler) BeginItemsEdit(c *fiber.Ctx) error {
	resp, err := h.uc.BeginItemsEdit(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// CancelItemsEdit restaura los ítems del último snapshot del servidor.
// POST /api/edits/:id/items/cancel
func (h *EditHandler) CancelItemsEdit(c *fiber.Ctx) error {
	resp, err := h.uc.CancelItemsEdit(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// ReplaceItems PUT /api/edits/:id/items
func (h *EditHandler) ReplaceItems(c *fiber.Ctx) error {
	var in dto.ItemsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.ReplaceItems(c.UserContext(), GetSession(c), c.Params("id"), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// AddItem POST /api/edits/:id/items
func (h *EditHandler) AddItem(c *fiber.Ctx) error {
	var in dto.ItemRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.AddItem(c.UserContext(), GetSession(c), c.Params("id"), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// UpdateItem PUT /api/edits/:id/items/:itemId
func (h *EditHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.ItemRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.UpdateItem(c.UserContext(), GetSession(c), c.Params("id"), c.Params("itemId"), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// RemoveItem DELETE /api/edits/:id/items/:itemId
func (h *EditHandler) RemoveItem(c *fiber.Ctx) error {
	resp, err := h.uc.RemoveItem(c.UserContext(), GetSession(c), c.Params("id"), c.Params("itemId"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Reload vuelve a leer el envío completo; los ítems en edición se conservan.
// POST /api/edits/:id/reload
func (h *EditHandler) Reload(c *fiber.Ctx) error {
	resp, err := h.uc.Reload(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// RefreshDocuments POST /api/edits/:id/documents/refresh
func (h *EditHandler) RefreshDocuments(c *fiber.Ctx) error {
	resp, err := h.uc.RefreshDocuments(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// UploadDocuments sube los PDFs uno a uno e informa el resultado por archivo.
// POST /api/edits/:id/documents
func (h *EditHandler) UploadDocuments(c *fiber.Ctx) error {
	docs, err := readDocuments(c)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	resp, err := h.uc.UploadDocuments(c.UserContext(), GetSession(c), c.Params("id"), docs)
	if err == nil && len(resp.Failed) > 0 {
		return c.Status(fiber.StatusMultiStatus).JSON(resp)
	}
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// DeleteDocument DELETE /api/edits/:id/documents/:docId
func (h *EditHandler) DeleteDocument(c *fiber.Ctx) error {
	resp, err := h.uc.DeleteDocument(c.UserContext(), GetSession(c), c.Params("id"), c.Params("docId"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Save envía los cambios al servicio remoto con el costo recalculado.
// POST /api/edits/:id/save
func (h *EditHandler) Save(c *fiber.Ctx) error {
	resp, err := h.uc.Save(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Close descarta la sesión de edición.
// DELETE /api/edits/:id
func (h *EditHandler) Close(c *fiber.Ctx) error {
	if err := h.uc.Close(c.UserContext(), GetSession(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
