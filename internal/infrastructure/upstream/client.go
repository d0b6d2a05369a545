package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// Verificar en tiempo de compilación que Client implementa ShipmentGateway.
var _ draft.ShipmentGateway = (*Client)(nil)

const maxResponseBytes = 4 << 20

// Observer recibe la duración de cada llamada al servicio de envíos.
type Observer interface {
	ObserveUpstream(operation, outcome string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveUpstream(string, string, time.Duration) {}

// Client adaptador REST del servicio de envíos. Reenvía el token del actor en cada llamada.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
	observer   Observer
}

// NewClient construye el adaptador. timeout <= 0 usa 15 s.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger, observer Observer) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "upstream").Logger(),
		observer:   observer,
	}
}

// GetShipment GET /shipment/{id}.
func (c *Client) GetShipment(ctx context.Context, sess entity.Session, id string) (*entity.Shipment, error) {
	data, err := c.do(ctx, sess, "get_shipment", http.MethodGet, "/shipment/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeShipment(data)
}

// GetDocuments GET /shipment/{id}/documents. Acepta un arreglo o {documents: [...]}.
func (c *Client) GetDocuments(ctx context.Context, sess entity.Session, shipmentID string) ([]entity.Document, error) {
	data, err := c.do(ctx, sess, "get_documents", http.MethodGet, "/shipment/"+url.PathEscape(shipmentID)+"/documents", nil, "")
	if err != nil {
		return nil, err
	}
	var docs []wireDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		var wrapped struct {
			Documents []wireDocument `json:"documents"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("upstream: documentos: %w: %v", domain.ErrUpstream, err)
		}
		docs = wrapped.Documents
	}
	return toDocuments(docs), nil
}

// CreateShipment POST /shipment (multipart): campos de texto, items como JSON y documents[].
// Una confirmación sin registro devuelve (nil, nil).
func (c *Client) CreateShipment(ctx context.Context, sess entity.Session, p *draft.CreatePayload) (*entity.Shipment, error) {
	fields, err := p.Fields()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, fmt.Errorf("upstream: campo %s: %w", f.Name, err)
		}
	}
	for _, doc := range p.Documents {
		if err := writeFile(mw, "documents[]", doc); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upstream: cerrar multipart: %w", err)
	}

	data, err := c.do(ctx, sess, "create_shipment", http.MethodPost, "/shipment", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	// El alta ya quedó registrada aunque el servicio solo confirme con ok.
	if isEmptyJSON(data) {
		c.log.Info().Str("ref_code", p.RefCode).Msg("alta confirmada sin registro en la respuesta")
		return nil, nil
	}
	return decodeShipment(data)
}

// UpdateShipment PUT /shipment/{id} con cuerpo JSON. Si el servicio solo responde
// ok sin registro, devuelve (nil, nil) y el llamador relee el envío.
func (c *Client) UpdateShipment(ctx context.Context, sess entity.Session, id string, p *draft.UpdatePayload) (*entity.Shipment, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("upstream: serializar edición: %w", err)
	}
	data, err := c.do(ctx, sess, "update_shipment", http.MethodPut, "/shipment/"+url.PathEscape(id), bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	if isEmptyJSON(data) {
		return nil, nil
	}
	return decodeShipment(data)
}

// UploadDocument POST /shipment/{id}/documents con un único archivo.
func (c *Client) UploadDocument(ctx context.Context, sess entity.Session, shipmentID string, doc entity.PendingDocument) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeFile(mw, "document", doc); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("upstream: cerrar multipart: %w", err)
	}
	_, err := c.do(ctx, sess, "upload_document", http.MethodPost, "/shipment/"+url.PathEscape(shipmentID)+"/documents", &buf, mw.FormDataContentType())
	return err
}

// DeleteDocument DELETE /document/{id}.
func (c *Client) DeleteDocument(ctx context.Context, sess entity.Session, documentID string) error {
	_, err := c.do(ctx, sess, "delete_document", http.MethodDelete, "/document/"+url.PathEscape(documentID), nil, "")
	return err
}

// do ejecuta la llamada y devuelve data ya desenvuelta. 404 se traduce a ErrNotFound;
// cualquier otro fallo a *draft.RemoteError (o ErrUpstream si no hubo respuesta).
func (c *Client) do(ctx context.Context, sess entity.Session, op, method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("upstream: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess.UpstreamToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.UpstreamToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ObserveUpstream(op, "transport_error", time.Since(start))
		if ctx.Err() != nil {
			return nil, fmt.Errorf("upstream %s: timeout o cancelación: %w: %w", op, domain.ErrUpstream, ctx.Err())
		}
		return nil, fmt.Errorf("upstream %s: %w: %w", op, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observer.ObserveUpstream(op, "transport_error", time.Since(start))
		return nil, fmt.Errorf("upstream %s: leer respuesta: %w: %w", op, domain.ErrUpstream, err)
	}
	data, env := unwrap(raw)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.observer.ObserveUpstream(op, "not_found", time.Since(start))
		return nil, fmt.Errorf("upstream %s %s: %w", op, path, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observer.ObserveUpstream(op, "error", time.Since(start))
		msg := ""
		if env != nil {
			msg = env.message()
		}
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Str("message", msg).Msg("respuesta no exitosa")
		return nil, &draft.RemoteError{Status: resp.StatusCode, Message: msg}
	case env != nil && env.OK != nil && !*env.OK:
		c.observer.ObserveUpstream(op, "error", time.Since(start))
		return nil, &draft.RemoteError{Status: resp.StatusCode, Message: env.message()}
	}
	c.observer.ObserveUpstream(op, "ok", time.Since(start))
	return data, nil
}

func decodeShipment(data json.RawMessage) (*entity.Shipment, error) {
	var w wireShipment
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("upstream: deserializar envío: %w: %v", domain.ErrUpstream, err)
	}
	return w.toEntity(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(mw *multipart.Writer, field string, doc entity.PendingDocument) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(doc.Name)))
	ct := doc.ContentType
	if ct == "" {
		ct = "application/pdf"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("upstream: archivo %s: %w", doc.Name, err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return fmt.Errorf("upstream: archivo %s: %w", doc.Name, err)
	}
	return nil
}

func isEmptyJSON(data json.RawMessage) bool {
	s := strings.TrimSpace(string(data))
	return s == "" || s == "null" || s == "{}" || s == "true"
}
