package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Resultados registrados en métricas.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Tipos de operación registrados en métricas.
const (
	KindCreate = "create"
	KindUpdate = "update"
)

const msgSubmitFailed = "no se pudo crear el envío, intente de nuevo"

// WizardConfig parámetros del asistente.
type WizardConfig struct {
	DefaultPrices           entity.ServicePrices
	PlaceholderShippingCost decimal.Decimal
	Limits                  shipment.DocumentLimits
}

// WizardUseCase casos de uso del asistente de creación.
type WizardUseCase struct {
	repo     repository.DraftRepository
	gateway  ShipmentGateway
	notifier SubmissionNotifier
	metrics  MetricsRecorder
	log      zerolog.Logger
	cfg      WizardConfig
	locks    *keyedMutex
	now      func() time.Time
	newID    func() string
}

// NewWizardUseCase construye el caso de uso. notifier y metrics pueden ser nil.
func NewWizardUseCase(
	repo repository.DraftRepository,
	gateway ShipmentGateway,
	notifier SubmissionNotifier,
	metrics MetricsRecorder,
	log zerolog.Logger,
	cfg WizardConfig,
) *WizardUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.Limits.MaxCount == 0 {
		cfg.Limits = shipment.DefaultDocumentLimits
	}
	return &WizardUseCase{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		metrics:  metrics,
		log:      log.With().Str("component", "wizard").Logger(),
		cfg:      cfg,
		locks:    newKeyedMutex(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create monta un asistente vacío para el actor.
func (uc *WizardUseCase) Create(ctx context.Context, sess entity.Session) (*dto.WizardResponse, error) {
	st := NewWizardState(uc.newID(), sess.UserID, uc.cfg.DefaultPrices, uc.now())
	if err := uc.repo.SaveWizard(ctx, st); err != nil {
		return nil, fmt.Errorf("guardar borrador: %w", err)
	}
	return toWizardResponse(st), nil
}

// Get devuelve el estado del asistente con los totales recalculados.
func (uc *WizardUseCase) Get(ctx context.Context, sess entity.Session, id string) (*dto.WizardResponse, error) {
	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return toWizardResponse(st), nil
}

// List devuelve los asistentes pendientes del usuario, el más reciente primero.
func (uc *WizardUseCase) List(ctx context.Context, sess entity.Session) (*dto.DraftListResponse, error) {
	rows, err := uc.repo.ListWizards(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("listar borradores: %w", err)
	}
	out := &dto.DraftListResponse{Drafts: make([]dto.DraftSummaryResponse, 0, len(rows))}
	for _, r := range rows {
		out.Drafts = append(out.Drafts, dto.DraftSummaryResponse{
			ID:         r.ID,
			RefCode:    r.RefCode,
			Step:       r.Step,
			TotalValue: r.TotalValue,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return out, nil
}

// Patch aplica los campos presentes del body.
func (uc *WizardUseCase) Patch(ctx context.Context, sess entity.Session, id string, req dto.DraftPatchRequest) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		applyPatch(w.Editor, req)
		return nil
	})
}

// AddItem agrega una línea manual.
func (uc *WizardUseCase) AddItem(ctx context.Context, sess entity.Session, id string, req dto.ItemRequest) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		_, err := w.AddItem(ToItemInput(req))
		return err
	})
}

// UpdateItem reemplaza una línea manual.
func (uc *WizardUseCase) UpdateItem(ctx context.Context, sess entity.Session, id, itemID string, req dto.ItemRequest) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		return w.UpdateItem(itemID, ToItemInput(req))
	})
}

// RemoveItem elimina una línea manual.
func (uc *WizardUseCase) RemoveItem(ctx context.Context, sess entity.Session, id, itemID string) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		return w.RemoveItem(itemID)
	})
}

// SetService activa/desactiva un servicio y opcionalmente cambia su precio.
func (uc *WizardUseCase) SetService(ctx context.Context, sess entity.Session, id string, code entity.ServiceCode, req dto.ServiceRequest) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		return setService(w.Editor, code, req)
	})
}

// AddDocument agrega un PDF pendiente; se sube junto con el alta.
func (uc *WizardUseCase) AddDocument(ctx context.Context, sess entity.Session, id string, doc entity.PendingDocument) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		return w.AddDocument(doc)
	})
}

// RemoveDocument quita un PDF pendiente.
func (uc *WizardUseCase) RemoveDocument(ctx context.Context, sess entity.Session, id string, index int) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		return w.RemoveDocument(index)
	})
}

// Next avanza si el paso actual lo permite; si no, devuelve sus errores.
func (uc *WizardUseCase) Next(ctx context.Context, sess entity.Session, id string) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		if w.Step() >= LastStep || w.Next() {
			return nil
		}
		return newValidationError(ValidateStep(w.Step(), w.State().Draft))
	})
}

// Prev retrocede un paso.
func (uc *WizardUseCase) Prev(ctx context.Context, sess entity.Session, id string) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		w.Prev()
		return nil
	})
}

// GoTo salta a un paso sin validar.
func (uc *WizardUseCase) GoTo(ctx context.Context, sess entity.Session, id string, step int) (*dto.WizardResponse, error) {
	return uc.mutate(ctx, sess, id, func(w *Wizard) error {
		return w.GoTo(step)
	})
}

// Submit valida el borrador completo y da de alta el envío. Ante un fallo del
// servicio remoto el borrador se conserva con el error "submit" para reintentar.
func (uc *WizardUseCase) Submit(ctx context.Context, sess entity.Session, id string) (*dto.SubmitResponse, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	w := NewWizard(st, uc.newID, uc.cfg.Limits)
	if !w.ValidateForSubmit() {
		uc.metrics.ObserveSubmission(KindCreate, ResultInvalid)
		if err := uc.save(ctx, st); err != nil {
			return nil, err
		}
		return nil, newValidationError(w.Errors())
	}

	payload := BuildCreatePayload(st.Draft, uc.cfg.PlaceholderShippingCost)
	sh, err := uc.gateway.CreateShipment(ctx, sess, payload)
	if err != nil {
		uc.log.Error().Err(err).Str("draft_id", id).Str("ref_code", st.Draft.RefCode).Msg("alta de envío fallida")
		uc.metrics.ObserveSubmission(KindCreate, ResultError)
		w.SetSubmitError(userMessage(err, msgSubmitFailed))
		if serr := uc.save(ctx, st); serr != nil {
			return nil, serr
		}
		if errors.Is(err, domain.ErrUpstream) {
			return nil, fmt.Errorf("alta de envío: %w", err)
		}
		return nil, fmt.Errorf("alta de envío: %w: %w", domain.ErrUpstream, err)
	}

	if sh == nil {
		sh = &entity.Shipment{RefCode: st.Draft.RefCode, Status: entity.Status(payload.Status)}
	}

	uc.metrics.ObserveSubmission(KindCreate, ResultOK)
	if err := uc.repo.DeleteWizard(ctx, id); err != nil {
		uc.log.Warn().Err(err).Str("draft_id", id).Msg("no se pudo descartar el borrador enviado")
	}
	ev := SubmissionEvent{
		Type:       EventShipmentSubmitted,
		ShipmentID: sh.ID,
		RefCode:    st.Draft.RefCode,
		UserID:     sess.UserID,
		Role:       string(sess.Role),
		OccurredAt: uc.now(),
	}
	if err := uc.notifier.Notify(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("shipment_id", sh.ID).Msg("notificación de alta fallida")
	}
	return &dto.SubmitResponse{Shipment: toShipmentResponse(sh)}, nil
}

// Cancel descarta el borrador.
func (uc *WizardUseCase) Cancel(ctx context.Context, sess entity.Session, id string) error {
	unlock := uc.locks.Lock(id)
	defer unlock()
	if _, err := uc.load(ctx, sess, id); err != nil {
		return err
	}
	return uc.repo.DeleteWizard(ctx, id)
}

func (uc *WizardUseCase) load(ctx context.Context, sess entity.Session, id string) (*entity.WizardState, error) {
	st, err := uc.repo.GetWizard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer borrador: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("borrador %s: %w", id, domain.ErrNotFound)
	}
	if st.UserID != sess.UserID {
		return nil, domain.ErrForbidden
	}
	return st, nil
}

func (uc *WizardUseCase) save(ctx context.Context, st *entity.WizardState) error {
	st.UpdatedAt = uc.now()
	if err := uc.repo.SaveWizard(ctx, st); err != nil {
		return fmt.Errorf("guardar borrador: %w", err)
	}
	return nil
}

// mutate serializa la operación sobre el borrador y persiste el resultado
// aunque la operación falle (los errores por campo forman parte del estado).
func (uc *WizardUseCase) mutate(ctx context.Context, sess entity.Session, id string, fn func(w *Wizard) error) (*dto.WizardResponse, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	w := NewWizard(st, uc.newID, uc.cfg.Limits)
	opErr := fieldError(w.Errors(), fn(w))
	if err := uc.save(ctx, st); err != nil {
		return nil, err
	}
	return toWizardResponse(st), opErr
}

func setService(e *Editor, code entity.ServiceCode, req dto.ServiceRequest) error {
	if _, ok := shipment.LookupService(code); !ok {
		return fmt.Errorf("servicio %q: %w", code, domain.ErrNotFound)
	}
	if req.Price != nil {
		if err := e.SetServicePrice(code, *req.Price); err != nil {
			return err
		}
	}
	if req.Enabled != nil {
		return e.SetService(code, *req.Enabled)
	}
	return nil
}
