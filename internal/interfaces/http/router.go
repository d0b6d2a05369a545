package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WizardUC  *draft.WizardUseCase
	EditUC    *draft.EditUseCase
	JWTSecret string
	JWTIssuer string
	Log       zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token con un rol del tablero.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireRole(entity.RoleAdmin, entity.RoleOperador, entity.RoleTransportista),
	)

	// Asistente de creación
	drafts := api.Group("/drafts")
	wizardHandler := NewWizardHandler(deps.WizardUC, deps.Log)
	drafts.Get("/", wizardHandler.List)
	drafts.Post("/", wizardHandler.Create)
	drafts.Get("/:id", wizardHandler.Get)
	drafts.Patch("/:id", wizardHandler.Patch)
	drafts.Delete("/:id", wizardHandler.Cancel)
	drafts.Post("/:id/items", wizardHandler.AddItem)
	drafts.Put("/:id/items/:itemId", wizardHandler.UpdateItem)
	drafts.Delete("/:id/items/:itemId", wizardHandler.RemoveItem)
	drafts.Put("/:id/services/:code", wizardHandler.SetService)
	drafts.Post("/:id/documents", wizardHandler.AddDocuments)
	drafts.Delete("/:id/documents/:index", wizardHandler.RemoveDocument)
	drafts.Post("/:id/next", wizardHandler.Next)
	drafts.Post("/:id/prev", wizardHandler.Prev)
	drafts.Post("/:id/goto/:step", wizardHandler.GoTo)
	drafts.Post("/:id/submit", wizardHandler.Submit)

	// Modal de edición
	editHandler := NewEditHandler(deps.EditUC, deps.Log)
	api.Post("/shipments/:id/edit", editHandler.Open)

	edits := api.Group("/edits")
	edits.Get("/:id", editHandler.Get)
	edits.Patch("/:id", editHandler.Patch)
	edits.Delete("/:id", editHandler.Close)
	edits.Put("/:id/services/:code", editHandler.SetService)
	edits.Post("/:id/items/edit", editHandler.BeginItemsEdit)
	edits.Post("/:id/items/cancel", editHandler.CancelItemsEdit)
	edits.Put("/:id/items", editHandler.ReplaceItems)
	edits.Post("/:id/items", editHandler.AddItem)
	edits.Put("/:id/items/:itemId", editHandler.UpdateItem)
	edits.Delete("/:id/items/:itemId", editHandler.RemoveItem)
	edits.Post("/:id/reload", editHandler.Reload)
	edits.Post("/:id/documents/refresh", editHandler.RefreshDocuments)
	edits.Post("/:id/documents", editHandler.UploadDocuments)
	edits.Delete("/:id/documents/:docId", editHandler.DeleteDocument)
	edits.Post("/:id/save", editHandler.Save)
}
