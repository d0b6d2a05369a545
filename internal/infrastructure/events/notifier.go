package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Writer subconjunto de kafka.Writer usado por el notificador; permite inyectar uno de prueba.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publica cada SubmissionEvent como JSON con clave = id del envío.
type KafkaNotifier struct {
	writer Writer
	log    zerolog.Logger
}

var _ draft.SubmissionNotifier = (*KafkaNotifier)(nil)

// NewKafkaNotifier escribe en topic a través de los brokers indicados.
func NewKafkaNotifier(brokers []string, topic string, log zerolog.Logger) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
	return NewKafkaNotifierWithWriter(w, log)
}

// NewKafkaNotifierWithWriter permite inyectar el writer.
func NewKafkaNotifierWithWriter(w Writer, log zerolog.Logger) *KafkaNotifier {
	return &KafkaNotifier{writer: w, log: log.With().Str("component", "kafka_notifier").Logger()}
}

// Notify serializa el evento y lo escribe en el tópico.
func (n *KafkaNotifier) Notify(ctx context.Context, ev draft.SubmissionEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: serializar %s: %w", ev.Type, err)
	}
	msg := kafka.Message{
		Key:     []byte(ev.ShipmentID),
		Value:   b,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(ev.Type)}},
		Time:    ev.OccurredAt,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.log.Error().Err(err).Str("event", ev.Type).Str("shipment_id", ev.ShipmentID).Msg("no se pudo publicar el evento")
		return fmt.Errorf("events: publicar %s: %w", ev.Type, err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// LogNotifier deja el evento en el log. Se usa cuando no hay brokers configurados.
type LogNotifier struct {
	log zerolog.Logger
}

var _ draft.SubmissionNotifier = LogNotifier{}

func NewLogNotifier(log zerolog.Logger) LogNotifier {
	return LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n LogNotifier) Notify(_ context.Context, ev draft.SubmissionEvent) error {
	n.log.Info().
		Str("event", ev.Type).
		Str("shipment_id", ev.ShipmentID).
		Str("ref_code", ev.RefCode).
		Str("user_id", ev.UserID).
		Time("occurred_at", ev.OccurredAt).
		Msg("evento de envío")
	return nil
}
