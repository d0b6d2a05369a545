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
)

const msgSaveFailed = "no se pudo guardar el envío, intente de nuevo"

// EditUseCase casos de uso del modal de edición de un envío existente.
type EditUseCase struct {
	repo     repository.DraftRepository
	gateway  ShipmentGateway
	notifier SubmissionNotifier
	metrics  MetricsRecorder
	log      zerolog.Logger
	limits   shipment.DocumentLimits
	locks    *keyedMutex
	uploads  *UploadGuard
	now      func() time.Time
	newID    func() string
}

// NewEditUseCase construye el caso de uso. notifier y metrics pueden ser nil.
func NewEditUseCase(
	repo repository.DraftRepository,
	gateway ShipmentGateway,
	notifier SubmissionNotifier,
	metrics MetricsRecorder,
	log zerolog.Logger,
	limits shipment.DocumentLimits,
) *EditUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if limits.MaxCount == 0 {
		limits = shipment.DefaultDocumentLimits
	}
	return &EditUseCase{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		metrics:  metrics,
		log:      log.With().Str("component", "edit").Logger(),
		limits:   limits,
		locks:    newKeyedMutex(),
		uploads:  NewUploadGuard(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Open lee el envío y abre una sesión de edición sembrada con ese registro.
func (uc *EditUseCase) Open(ctx context.Context, sess entity.Session, shipmentID string) (*dto.EditSessionResponse, error) {
	sh, err := uc.gateway.GetShipment(ctx, sess, shipmentID)
	if err != nil {
		uc.log.Warn().Err(err).Str("shipment_id", shipmentID).Msg("no se pudo leer el envío")
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUpstream) {
			return nil, fmt.Errorf("abrir envío %s: %w", shipmentID, err)
		}
		return nil, fmt.Errorf("abrir envío %s: %w: %w", shipmentID, domain.ErrUpstream, err)
	}
	if sh == nil {
		return nil, fmt.Errorf("envío %s: %w", shipmentID, domain.ErrNotFound)
	}
	st := SeedEditState(uc.newID(), sess.UserID, *sh, uc.newID, uc.now())
	if err := uc.repo.SaveEdit(ctx, st); err != nil {
		return nil, fmt.Errorf("guardar sesión de edición: %w", err)
	}
	return uc.response(st, sess), nil
}

// Get devuelve la sesión con los totales recalculados.
func (uc *EditUseCase) Get(ctx context.Context, sess entity.Session, id string) (*dto.EditSessionResponse, error) {
	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return uc.response(st, sess), nil
}

// Patch aplica los campos presentes del body al borrador local.
func (uc *EditUseCase) Patch(ctx context.Context, sess entity.Session, id string, req dto.DraftPatchRequest) (*dto.EditSessionResponse, error) {
	return uc.mutate(ctx, sess, id, func(st *entity.EditState, e *Editor) error {
		applyPatch(e, req)
		return nil
	})
}

// SetService activa/desactiva un servicio del envío y opcionalmente cambia su precio.
func (uc *EditUseCase) SetService(ctx context.Context, sess entity.Session, id string, code entity.ServiceCode, req dto.ServiceRequest) (*dto.EditSessionResponse, error) {
	return uc.mutate(ctx, sess, id, func(st *entity.EditState, e *Editor) error {
		return setService(e, code, req)
	})
}

// BeginItemsEdit entra en modo edición de ítems: a partir de aquí una recarga
// completa conserva la lista local.
func (uc *EditUseCase) BeginItemsEdit(ctx context.Context, sess entity.Session, id string) (*dto.EditSessionResponse, error) {
	return uc.mutate(ctx, sess, id, func(st *entity.EditState, e *Editor) error {
		st.EditingItems = true
		return nil
	})
}

// CancelItemsEdit sale del modo edición y restaura los ítems del último snapshot.
func (uc *EditUseCase) CancelItemsEdit(ctx context.Context, sess entity.Session, id string) (*dto.EditSessionResponse, error) {
	return uc.mutate(ctx, sess, id, func(st *entity.EditState, e *Editor) error {
		st.EditingItems = false
		st.Local.Items = DraftFromShipment(st.Server, uc.newID).Items
		ErrorMap(st.Errors).Clear(FieldItems)
		return nil
	})
}

// AddItem agrega una línea manual. Requiere modo edición de ítems.
func (uc *EditUseCase) AddItem(ctx context.Context, sess entity.Session, id string, req dto.ItemRequest) (*dto.EditSessionResponse, error) {
	return uc.mutateItems(ctx, sess, id, func(e *Editor) error {
		_, err := e.AddItem(ToItemInput(req))
		return err
	})
}

// UpdateItem reemplaza una línea manual. Requiere modo edición de ítems.
func (uc *EditUseCase) UpdateItem(ctx context.Context, sess entity.Session, id, itemID string, req dto.ItemRequest) (*dto.EditSessionResponse, error) {
	return uc.mutateItems(ctx, sess, id, func(e *Editor) error {
		return e.UpdateItem(itemID, ToItemInput(req))
	})
}

// RemoveItem elimina una línea manual. Requiere modo edición de ítems.
func (uc *EditUseCase) RemoveItem(ctx context.Context, sess entity.Session, id, itemID string) (*dto.EditSessionResponse, error) {
	return uc.mutateItems(ctx, sess, id, func(e *Editor) error {
		return e.RemoveItem(itemID)
	})
}

// ReplaceItems reemplaza la lista completa (filas vacías permitidas). Requiere modo edición.
func (uc *EditUseCase) ReplaceItems(ctx context.Context, sess entity.Session, id string, req dto.ItemsRequest) (*dto.EditSessionResponse, error) {
	return uc.mutateItems(ctx, sess, id, func(e *Editor) error {
		return e.ReplaceItems(toItemInputs(req.Items))
	})
}

// RefreshDocuments reemplaza solo la lista de documentos con la del servidor.
// Un fallo de lectura se registra y deja el estado sin cambios.
func (uc *EditUseCase) RefreshDocuments(ctx context.Context, sess entity.Session, id string) (*dto.EditSessionResponse, error) {
	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	docs, err := uc.gateway.GetDocuments(ctx, sess, st.ShipmentID)
	if err != nil {
		uc.log.Warn().Err(err).Str("shipment_id", st.ShipmentID).Msg("no se pudo refrescar documentos")
		return uc.response(st, sess), nil
	}
	return uc.applyDocuments(ctx, sess, id, docs)
}

// Reload relee el envío completo y lo fusiona: todos los campos vienen del
// servidor salvo los ítems si el usuario los está editando. La respuesta se
// aplica aunque llegue tarde; la decisión sobre los ítems se toma al aplicarla.
func (uc *EditUseCase) Reload(ctx context.Context, sess entity.Session, id string) (*dto.EditSessionResponse, error) {
	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	sh, err := uc.gateway.GetShipment(ctx, sess, st.ShipmentID)
	if err != nil || sh == nil {
		uc.log.Warn().Err(err).Str("shipment_id", st.ShipmentID).Msg("no se pudo recargar el envío")
		return uc.response(st, sess), nil
	}

	unlock := uc.locks.Lock(id)
	defer unlock()
	cur, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	uc.applySnapshot(cur, *sh)
	if err := uc.save(ctx, cur); err != nil {
		return nil, err
	}
	return uc.response(cur, sess), nil
}

// UploadDocuments sube uno o más PDF al envío, uno por uno. Los fallos se informan
// por archivo; la lista de documentos se refresca al terminar en cualquier caso.
// Solo una carga por envío a la vez.
func (uc *EditUseCase) UploadDocuments(ctx context.Context, sess entity.Session, id string, docs []entity.PendingDocument) (*dto.UploadResultResponse, error) {
	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !shipment.CanEdit(sess.Role, st.Server.Status) {
		return nil, domain.ErrForbidden
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("sin archivos: %w", domain.ErrInvalidInput)
	}
	if err := shipment.CheckDocumentCount(len(st.Local.Documents), len(docs), uc.limits); err != nil {
		return nil, &ValidationError{Fields: map[string]string{FieldDocuments: err.Error()}, Cause: err}
	}
	result, err := uc.uploadAll(ctx, sess, st.ShipmentID, docs)
	if err != nil {
		return nil, err
	}

	resp, err := uc.RefreshDocuments(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	result.Session = *resp
	return result, nil
}

// uploadAll sube los archivos en orden bajo la marca de carga del envío.
func (uc *EditUseCase) uploadAll(ctx context.Context, sess entity.Session, shipmentID string, docs []entity.PendingDocument) (*dto.UploadResultResponse, error) {
	if !uc.uploads.TryAcquire(shipmentID) {
		return nil, domain.ErrUploadInProgress
	}
	defer uc.uploads.Release(shipmentID)

	result := &dto.UploadResultResponse{Uploaded: []string{}, Failed: map[string]string{}}
	for _, doc := range docs {
		if err := shipment.ValidateDocument(doc.Name, doc.ContentType, doc.Size, uc.limits); err != nil {
			result.Failed[doc.Name] = err.Error()
			continue
		}
		if err := uc.gateway.UploadDocument(ctx, sess, shipmentID, doc); err != nil {
			uc.log.Warn().Err(err).Str("shipment_id", shipmentID).Str("file", doc.Name).Msg("carga de documento fallida")
			result.Failed[doc.Name] = userMessage(err, domain.ErrUpstream.Error())
			continue
		}
		result.Uploaded = append(result.Uploaded, doc.Name)
	}
	return result, nil
}

// DeleteDocument elimina un documento del servidor y refresca la lista.
func (uc *EditUseCase) DeleteDocument(ctx context.Context, sess entity.Session, id, documentID string) (*dto.EditSessionResponse, error) {
	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !shipment.CanEdit(sess.Role, st.Server.Status) {
		return nil, domain.ErrForbidden
	}
	if err := uc.gateway.DeleteDocument(ctx, sess, documentID); err != nil {
		uc.log.Warn().Err(err).Str("document_id", documentID).Msg("no se pudo eliminar el documento")
		if errors.Is(err, domain.ErrUpstream) {
			return nil, fmt.Errorf("eliminar documento: %w", err)
		}
		return nil, fmt.Errorf("eliminar documento: %w: %w", domain.ErrUpstream, err)
	}
	return uc.RefreshDocuments(ctx, sess, id)
}

// Save envía el borrador local al servidor. Descarta filas vacías y recalcula el
// costo de envío. Ante un fallo la sesión queda intacta con el error "submit".
func (uc *EditUseCase) Save(ctx context.Context, sess entity.Session, id string) (*dto.EditSessionResponse, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !shipment.CanEdit(sess.Role, st.Server.Status) {
		return nil, domain.ErrForbidden
	}
	errs := ErrorMap(st.Errors)
	errs.Clear(FieldSubmit)

	payload := BuildUpdatePayload(st.Local, sess)
	sh, err := uc.gateway.UpdateShipment(ctx, sess, st.ShipmentID, payload)
	if err != nil {
		uc.log.Error().Err(err).Str("shipment_id", st.ShipmentID).Msg("guardado de envío fallido")
		uc.metrics.ObserveSubmission(KindUpdate, ResultError)
		errs[FieldSubmit] = userMessage(err, msgSaveFailed)
		if serr := uc.save(ctx, st); serr != nil {
			return nil, serr
		}
		if errors.Is(err, domain.ErrUpstream) {
			return nil, fmt.Errorf("guardar envío: %w", err)
		}
		return nil, fmt.Errorf("guardar envío: %w: %w", domain.ErrUpstream, err)
	}
	if sh == nil {
		sh, err = uc.gateway.GetShipment(ctx, sess, st.ShipmentID)
		if err != nil || sh == nil {
			uc.log.Warn().Err(err).Str("shipment_id", st.ShipmentID).Msg("no se pudo releer el envío guardado")
		}
	}

	uc.metrics.ObserveSubmission(KindUpdate, ResultOK)
	st.EditingItems = false
	if sh != nil {
		st.Server = *sh
		st.Local = DraftFromShipment(*sh, uc.newID)
	}
	st.Errors = map[string]string{}
	if err := uc.save(ctx, st); err != nil {
		return nil, err
	}

	ev := SubmissionEvent{
		Type:       EventShipmentUpdated,
		ShipmentID: st.ShipmentID,
		RefCode:    st.Local.RefCode,
		UserID:     sess.UserID,
		Role:       string(sess.Role),
		OccurredAt: uc.now(),
	}
	if err := uc.notifier.Notify(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("shipment_id", st.ShipmentID).Msg("notificación de guardado fallida")
	}
	return uc.response(st, sess), nil
}

// Close descarta la sesión de edición.
func (uc *EditUseCase) Close(ctx context.Context, sess entity.Session, id string) error {
	unlock := uc.locks.Lock(id)
	defer unlock()
	if _, err := uc.load(ctx, sess, id); err != nil {
		return err
	}
	return uc.repo.DeleteEdit(ctx, id)
}

func (uc *EditUseCase) applySnapshot(st *entity.EditState, sh entity.Shipment) {
	st.Local = MergeServerSnapshot(st.Local, sh, MergeOptions{ItemsLocked: st.EditingItems}, uc.newID)
	st.Server = sh
}

func (uc *EditUseCase) applyDocuments(ctx context.Context, sess entity.Session, id string, docs []entity.Document) (*dto.EditSessionResponse, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()
	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	st.Local = ApplyDocuments(st.Local, docs)
	st.Server.Documents = shipment.NormalizeDocuments(docs)
	if err := uc.save(ctx, st); err != nil {
		return nil, err
	}
	return uc.response(st, sess), nil
}

func (uc *EditUseCase) load(ctx context.Context, sess entity.Session, id string) (*entity.EditState, error) {
	st, err := uc.repo.GetEdit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer sesión de edición: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("sesión de edición %s: %w", id, domain.ErrNotFound)
	}
	if st.UserID != sess.UserID {
		return nil, domain.ErrForbidden
	}
	if st.Errors == nil {
		st.Errors = map[string]string{}
	}
	return st, nil
}

func (uc *EditUseCase) save(ctx context.Context, st *entity.EditState) error {
	st.UpdatedAt = uc.now()
	if err := uc.repo.SaveEdit(ctx, st); err != nil {
		return fmt.Errorf("guardar sesión de edición: %w", err)
	}
	return nil
}

func (uc *EditUseCase) response(st *entity.EditState, sess entity.Session) *dto.EditSessionResponse {
	return toEditResponse(st, sess, uc.uploads.Uploading(st.ShipmentID))
}

// mutate serializa la operación y exige que el actor pueda editar el envío.
func (uc *EditUseCase) mutate(ctx context.Context, sess entity.Session, id string, fn func(st *entity.EditState, e *Editor) error) (*dto.EditSessionResponse, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	st, err := uc.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !shipment.CanEdit(sess.Role, st.Server.Status) {
		return nil, domain.ErrForbidden
	}
	errs := ErrorMap(st.Errors)
	opErr := fieldError(errs, fn(st, NewEditor(&st.Local, errs, uc.newID, uc.limits)))
	if err := uc.save(ctx, st); err != nil {
		return nil, err
	}
	return uc.response(st, sess), opErr
}

func (uc *EditUseCase) mutateItems(ctx context.Context, sess entity.Session, id string, fn func(e *Editor) error) (*dto.EditSessionResponse, error) {
	return uc.mutate(ctx, sess, id, func(st *entity.EditState, e *Editor) error {
		if !st.EditingItems {
			return domain.ErrNotEditing
		}
		return fn(e)
	})
}
