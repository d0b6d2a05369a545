package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

// DraftRepo almacén en memoria del proceso. Guarda copias serializadas para que
// quien lee nunca comparta slices con quien escribió.
type DraftRepo struct {
	mu      sync.RWMutex
	wizards map[string]entry
	edits   map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewDraftRepository construye el almacén. ttl <= 0 desactiva la expiración.
func NewDraftRepository(ttl time.Duration) *DraftRepo {
	return &DraftRepo{
		wizards: make(map[string]entry),
		edits:   make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *DraftRepo) put(m map[string]entry, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializar borrador: %w", err)
	}
	e := entry{data: data}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	r.mu.Lock()
	m[id] = e
	r.mu.Unlock()
	return nil
}

func (r *DraftRepo) get(m map[string]entry, id string, v any) (bool, error) {
	r.mu.RLock()
	e, ok := m[id]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if e.expired(r.now()) {
		r.mu.Lock()
		delete(m, id)
		r.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.data, v); err != nil {
		return false, fmt.Errorf("leer borrador: %w", err)
	}
	return true, nil
}

// SaveWizard guarda el asistente.
func (r *DraftRepo) SaveWizard(_ context.Context, state *entity.WizardState) error {
	return r.put(r.wizards, state.ID, state)
}

// GetWizard devuelve (nil, nil) si no existe o expiró.
func (r *DraftRepo) GetWizard(_ context.Context, id string) (*entity.WizardState, error) {
	var st entity.WizardState
	ok, err := r.get(r.wizards, id, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// DeleteWizard elimina el asistente. No falla si no existe.
func (r *DraftRepo) DeleteWizard(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.wizards, id)
	r.mu.Unlock()
	return nil
}

// ListWizards lista los asistentes vigentes del usuario.
func (r *DraftRepo) ListWizards(_ context.Context, userID string) ([]entity.DraftSummary, error) {
	now := r.now()
	r.mu.RLock()
	entries := make([]entry, 0, len(r.wizards))
	for _, e := range r.wizards {
		if e.expired(now) {
			continue
		}
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	list := []entity.DraftSummary{}
	for _, e := range entries {
		var st entity.WizardState
		if err := json.Unmarshal(e.data, &st); err != nil {
			return nil, fmt.Errorf("leer borrador: %w", err)
		}
		if st.UserID != userID {
			continue
		}
		list = append(list, entity.DraftSummary{
			ID:         st.ID,
			RefCode:    st.Draft.RefCode,
			Step:       st.Step,
			TotalValue: shipment.DraftTotals(st.Draft).Value.Round(2),
			UpdatedAt:  st.UpdatedAt,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

// PurgeExpired elimina asistentes y sesiones vencidos y devuelve cuántos se borraron.
func (r *DraftRepo) PurgeExpired(_ context.Context) (int64, error) {
	now := r.now()
	var n int64
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range []map[string]entry{r.wizards, r.edits} {
		for id, e := range m {
			if e.expired(now) {
				delete(m, id)
				n++
			}
		}
	}
	return n, nil
}

// SaveEdit guarda la sesión de edición.
func (r *DraftRepo) SaveEdit(_ context.Context, state *entity.EditState) error {
	return r.put(r.edits, state.ID, state)
}

// GetEdit devuelve (nil, nil) si no existe o expiró.
func (r *DraftRepo) GetEdit(_ context.Context, id string) (*entity.EditState, error) {
	var st entity.EditState
	ok, err := r.get(r.edits, id, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// DeleteEdit elimina la sesión de edición.
func (r *DraftRepo) DeleteEdit(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.edits, id)
	r.mu.Unlock()
	return nil
}
