package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

const (
	kindWizard = "wizard"
	kindEdit   = "edit"
)

// Schema tabla única para asistentes y sesiones de edición. total_value queda
// desnormalizado para listar sin abrir el JSONB.
const Schema = `
CREATE TABLE IF NOT EXISTS shipment_drafts (
	kind        TEXT        NOT NULL,
	id          TEXT        NOT NULL,
	user_id     TEXT        NOT NULL,
	shipment_id TEXT,
	state       JSONB       NOT NULL,
	total_value NUMERIC(14,2) NOT NULL DEFAULT 0,
	expires_at  TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS idx_shipment_drafts_user ON shipment_drafts (user_id, kind, updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_shipment_drafts_expires ON shipment_drafts (expires_at);`

// DraftRepo implementación de DraftRepository sobre PostgreSQL (usable con pool o tx).
type DraftRepo struct {
	q   Querier
	ttl time.Duration
}

// NewDraftRepository construye el adaptador. ttl <= 0 desactiva la expiración.
func NewDraftRepository(q Querier, ttl time.Duration) *DraftRepo {
	return &DraftRepo{q: q, ttl: ttl}
}

// EnsureSchema crea la tabla si no existe.
func (r *DraftRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("crear esquema shipment_drafts: %w", err)
	}
	return nil
}

// PurgeExpired elimina los borradores vencidos y devuelve cuántos se borraron.
func (r *DraftRepo) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM shipment_drafts WHERE expires_at IS NOT NULL AND expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *DraftRepo) upsert(ctx context.Context, kind, id, userID string, shipmentID *string, total decimal.Decimal, createdAt, updatedAt time.Time, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("serializar borrador: %w", err)
	}
	var expiresAt *time.Time
	if r.ttl > 0 {
		t := updatedAt.Add(r.ttl)
		expiresAt = &t
	}
	query := `
		INSERT INTO shipment_drafts (kind, id, user_id, shipment_id, state, total_value, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (kind, id)
		DO UPDATE SET state = EXCLUDED.state, total_value = EXCLUDED.total_value,
			expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query, kind, id, userID, shipmentID, data, total.Round(2), expiresAt, createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("upsert draft %s: %w", kind, err)
	}
	return nil
}

func (r *DraftRepo) get(ctx context.Context, kind, id string, v any) (bool, error) {
	query := `
		SELECT state FROM shipment_drafts
		WHERE kind = $1 AND id = $2 AND (expires_at IS NULL OR expires_at > now())`
	var data []byte
	err := r.q.QueryRow(ctx, query, kind, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get draft %s: %w", kind, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("leer borrador: %w", err)
	}
	return true, nil
}

func (r *DraftRepo) delete(ctx context.Context, kind, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM shipment_drafts WHERE kind = $1 AND id = $2`, kind, id); err != nil {
		return fmt.Errorf("delete draft %s: %w", kind, err)
	}
	return nil
}

// SaveWizard inserta o actualiza el asistente.
func (r *DraftRepo) SaveWizard(ctx context.Context, state *entity.WizardState) error {
	total := shipment.DraftTotals(state.Draft).Value
	return r.upsert(ctx, kindWizard, state.ID, state.UserID, nil, total, state.CreatedAt, state.UpdatedAt, state)
}

// GetWizard devuelve (nil, nil) si no existe o expiró.
func (r *DraftRepo) GetWizard(ctx context.Context, id string) (*entity.WizardState, error) {
	var st entity.WizardState
	ok, err := r.get(ctx, kindWizard, id, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// DeleteWizard elimina el asistente.
func (r *DraftRepo) DeleteWizard(ctx context.Context, id string) error {
	return r.delete(ctx, kindWizard, id)
}

// ListWizards lista los asistentes vigentes del usuario con el total desnormalizado.
func (r *DraftRepo) ListWizards(ctx context.Context, userID string) ([]entity.DraftSummary, error) {
	query := `
		SELECT id, COALESCE(state->'draft'->>'ref_code', ''), COALESCE((state->>'step')::int, 0), total_value, updated_at
		FROM shipment_drafts
		WHERE kind = $1 AND user_id = $2 AND (expires_at IS NULL OR expires_at > now())
		ORDER BY updated_at DESC`
	rows, err := r.q.Query(ctx, query, kindWizard, userID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()
	list := []entity.DraftSummary{}
	for rows.Next() {
		var s entity.DraftSummary
		if err := rows.Scan(&s.ID, &s.RefCode, &s.Step, &s.TotalValue, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// SaveEdit inserta o actualiza la sesión de edición.
func (r *DraftRepo) SaveEdit(ctx context.Context, state *entity.EditState) error {
	total := shipment.DraftTotals(state.Local).Value
	shipmentID := state.ShipmentID
	return r.upsert(ctx, kindEdit, state.ID, state.UserID, &shipmentID, total, state.CreatedAt, state.UpdatedAt, state)
}

// GetEdit devuelve (nil, nil) si no existe o expiró.
func (r *DraftRepo) GetEdit(ctx context.Context, id string) (*entity.EditState, error) {
	var st entity.EditState
	ok, err := r.get(ctx, kindEdit, id, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// DeleteEdit elimina la sesión de edición.
func (r *DraftRepo) DeleteEdit(ctx context.Context, id string) error {
	return r.delete(ctx, kindEdit, id)
}
