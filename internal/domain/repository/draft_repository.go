package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// DraftRepository define el puerto de persistencia de borradores (asistente y modal de edición).
// Get devuelve (nil, nil) si no existe. ListWizards omite los vencidos y ordena
// del más reciente al más antiguo.
type DraftRepository interface {
	SaveWizard(ctx context.Context, state *entity.WizardState) error
	GetWizard(ctx context.Context, id string) (*entity.WizardState, error)
	DeleteWizard(ctx context.Context, id string) error
	ListWizards(ctx context.Context, userID string) ([]entity.DraftSummary, error)

	SaveEdit(ctx context.Context, state *entity.EditState) error
	GetEdit(ctx context.Context, id string) (*entity.EditState, error)
	DeleteEdit(ctx context.Context, id string) error
}
