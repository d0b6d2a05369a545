package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// WizardHandler asistente de creación de envíos (protegido).
type WizardHandler struct {
	uc  *draft.WizardUseCase
	log zerolog.Logger
}

// NewWizardHandler construye el handler.
func NewWizardHandler(uc *draft.WizardUseCase, log zerolog.Logger) *WizardHandler {
	return &WizardHandler{uc: uc, log: log}
}

// Create abre un asistente vacío.
// POST /api/drafts
func (h *WizardHandler) Create(c *fiber.Ctx) error {
	resp, err := h.uc.Create(c.UserContext(), GetSession(c))
	return respond(c, h.log, fiber.StatusCreated, resp, err)
}

// Get devuelve el asistente con totales y can_proceed.
// GET /api/drafts/:id
func (h *WizardHandler) Get(c *fiber.Ctx) error {
	resp, err := h.uc.Get(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// List asistentes pendientes del usuario.
// GET /api/drafts
func (h *WizardHandler) List(c *fiber.Ctx) error {
	resp, err := h.uc.List(c.UserContext(), GetSession(c))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Patch actualiza campos del borrador.
// PATCH /api/drafts/:id
func (h *WizardHandler) Patch(c *fiber.Ctx) error {
	var in dto.DraftPatchRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.Patch(c.UserContext(), GetSession(c), c.Params("id"), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// AddItem agrega una línea manual.
// POST /api/drafts/:id/items
func (h *WizardHandler) AddItem(c *fiber.Ctx) error {
	var in dto.ItemRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.AddItem(c.UserContext(), GetSession(c), c.Params("id"), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// UpdateItem PUT /api/drafts/:id/items/:itemId
func (h *WizardHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.ItemRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.UpdateItem(c.UserContext(), GetSession(c), c.Params("id"), c.Params("itemId"), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// RemoveItem DELETE /api/drafts/:id/items/:itemId
func (h *WizardHandler) RemoveItem(c *fiber.Ctx) error {
	resp, err := h.uc.RemoveItem(c.UserContext(), GetSession(c), c.Params("id"), c.Params("itemId"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// SetService activa/desactiva un servicio o cambia su precio.
// PUT /api/drafts/:id/services/:code
func (h *WizardHandler) SetService(c *fiber.Ctx) error {
	var in dto.ServiceRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	resp, err := h.uc.SetService(c.UserContext(), GetSession(c), c.Params("id"), entity.ServiceCode(c.Params("code")), in)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// AddDocuments agrega uno o varios PDFs pendientes (multipart, campo "documents").
// POST /api/drafts/:id/documents
func (h *WizardHandler) AddDocuments(c *fiber.Ctx) error {
	docs, err := readDocuments(c)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	var resp *dto.WizardResponse
	for _, doc := range docs {
		resp, err = h.uc.AddDocument(c.UserContext(), GetSession(c), c.Params("id"), doc)
		if err != nil {
			break
		}
	}
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// RemoveDocument DELETE /api/drafts/:id/documents/:index
func (h *WizardHandler) RemoveDocument(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "índice inválido"})
	}
	resp, err := h.uc.RemoveDocument(c.UserContext(), GetSession(c), c.Params("id"), index)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Next POST /api/drafts/:id/next
func (h *WizardHandler) Next(c *fiber.Ctx) error {
	resp, err := h.uc.Next(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Prev POST /api/drafts/:id/prev
func (h *WizardHandler) Prev(c *fiber.Ctx) error {
	resp, err := h.uc.Prev(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// GoTo POST /api/drafts/:id/goto/:step
func (h *WizardHandler) GoTo(c *fiber.Ctx) error {
	step, err := strconv.Atoi(c.Params("step"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paso inválido"})
	}
	resp, err := h.uc.GoTo(c.UserContext(), GetSession(c), c.Params("id"), step)
	return respond(c, h.log, fiber.StatusOK, resp, err)
}

// Submit valida y da de alta el envío en el servicio remoto.
// POST /api/drafts/:id/submit
func (h *WizardHandler) Submit(c *fiber.Ctx) error {
	resp, err := h.uc.Submit(c.UserContext(), GetSession(c), c.Params("id"))
	return respond(c, h.log, fiber.StatusCreated, resp, err)
}

// Cancel descarta el borrador.
// DELETE /api/drafts/:id
func (h *WizardHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.UserContext(), GetSession(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
