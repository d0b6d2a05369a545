package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// ShipmentGateway contrato mínimo con el servicio REST de envíos.
// La sesión viaja explícita para que el adaptador reenvíe el token del actor.
type ShipmentGateway interface {
	GetShipment(ctx context.Context, sess entity.Session, id string) (*entity.Shipment, error)
	GetDocuments(ctx context.Context, sess entity.Session, shipmentID string) ([]entity.Document, error)
	CreateShipment(ctx context.Context, sess entity.Session, p *CreatePayload) (*entity.Shipment, error)
	UpdateShipment(ctx context.Context, sess entity.Session, id string, p *UpdatePayload) (*entity.Shipment, error)
	UploadDocument(ctx context.Context, sess entity.Session, shipmentID string, doc entity.PendingDocument) error
	DeleteDocument(ctx context.Context, sess entity.Session, documentID string) error
}

// Tipos de evento publicados tras un envío o guardado exitoso.
const (
	EventShipmentSubmitted = "shipment.submitted"
	EventShipmentUpdated   = "shipment.updated"
)

// SubmissionEvent aviso al resto del sistema (refresco de listados, navegación).
type SubmissionEvent struct {
	Type       string    `json:"type"`
	ShipmentID string    `json:"shipment_id"`
	RefCode    string    `json:"ref_code"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SubmissionNotifier publica SubmissionEvent. Un fallo al notificar no revierte el envío.
type SubmissionNotifier interface {
	Notify(ctx context.Context, ev SubmissionEvent) error
}

// MetricsRecorder registra resultados de envíos y guardados.
type MetricsRecorder interface {
	ObserveSubmission(kind, result string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSubmission(string, string) {}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, SubmissionEvent) error { return nil }

// RemoteError fallo informado por el servicio de envíos (respuesta no exitosa o ok=false).
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("servicio de envíos: HTTP %d", e.Status)
	}
	return fmt.Sprintf("servicio de envíos: HTTP %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error { return domain.ErrUpstream }

// userMessage mensaje legible para el error "submit".
func userMessage(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}
