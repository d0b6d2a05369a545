package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Logistica-api/internal/interfaces/http"
)

type stubGateway struct {
	mu        sync.Mutex
	shipments map[string]entity.Shipment
	created   []*draft.CreatePayload
	createErr error
}

func (g *stubGateway) GetShipment(_ context.Context, _ entity.Session, id string) (*entity.Shipment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sh, ok := g.shipments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sh, nil
}

func (g *stubGateway) GetDocuments(_ context.Context, _ entity.Session, id string) ([]entity.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]entity.Document(nil), g.shipments[id].Documents...), nil
}

func (g *stubGateway) CreateShipment(_ context.Context, _ entity.Session, p *draft.CreatePayload) (*entity.Shipment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, p)
	return &entity.Shipment{ID: "77", RefCode: p.RefCode, Status: entity.StatusPending}, nil
}

func (g *stubGateway) UpdateShipment(_ context.Context, _ entity.Session, id string, _ *draft.UpdatePayload) (*entity.Shipment, error) {
	return g.GetShipment(context.Background(), entity.Session{}, id)
}

func (g *stubGateway) UploadDocument(_ context.Context, _ entity.Session, id string, doc entity.PendingDocument) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	sh := g.shipments[id]
	sh.Documents = append(sh.Documents, entity.Document{ID: "d-" + doc.Name, Name: doc.Name, URL: "https://files/" + doc.Name})
	g.shipments[id] = sh
	return nil
}

func (g *stubGateway) DeleteDocument(context.Context, entity.Session, string) error { return nil }

func newAPI(t *testing.T, gw *stubGateway) *fiber.App {
	t.Helper()
	repo := memory.NewDraftRepository(0)
	log := zerolog.Nop()
	wizardUC := draft.NewWizardUseCase(repo, gw, nil, nil, log, draft.WizardConfig{})
	editUC := draft.NewEditUseCase(repo, gw, nil, nil, log, shipment.DefaultDocumentLimits)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WizardUC:  wizardUC,
		EditUC:    editUC,
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
		Log:       log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", auth)
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func fillWizard(t *testing.T, app *fiber.App, auth, id string) {
	t.Helper()
	resp, _ := call(t, app, http.MethodPatch, "/api/drafts/"+id, auth, map[string]interface{}{
		"ref_code":    "REF-9",
		"customer":    map[string]string{"id": "c-1", "name": "ACME"},
		"origin":      map[string]interface{}{"address": "Bodega 1", "lat": 4.6, "lng": -74.1},
		"destination": map[string]interface{}{"address": "Cliente"},
		"driver_id":   "drv-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = call(t, app, http.MethodPost, "/api/drafts/"+id+"/items", auth, map[string]interface{}{
		"description": "caja", "quantity": 3, "weight": "12.5", "value": 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Asistente
// ──────────────────────────────────────────────────────────────────────────────

func TestWizardHTTP_FlujoCompleto(t *testing.T) {
	gw := &stubGateway{shipments: map[string]entity.Shipment{}}
	app := newAPI(t, gw)
	auth := tokenFor(t, "u1", "operador")

	resp, body := call(t, app, http.MethodPost, "/api/drafts", auth, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, "party", body["step_name"])

	fillWizard(t, app, auth, id)
	for i := 0; i < draft.LastStep; i++ {
		resp, _ = call(t, app, http.MethodPost, "/api/drafts/"+id+"/next", auth, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body = call(t, app, http.MethodGet, "/api/drafts/"+id, auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(draft.LastStep), body["step"])
	totals := body["totals"].(map[string]interface{})
	assert.Equal(t, float64(3), totals["quantity"])
	assert.Equal(t, "12", totals["value"])

	resp, body = call(t, app, http.MethodPost, "/api/drafts/"+id+"/submit", auth, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "77", body["shipment"].(map[string]interface{})["id"])
	require.Len(t, gw.created, 1)
	assert.Equal(t, "4.6", gw.created[0].OriginLat)

	resp, _ = call(t, app, http.MethodGet, "/api/drafts/"+id, auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "el borrador enviado se descarta")
}

func TestWizardHTTP_NextInvalidoDevuelve422ConEstado(t *testing.T) {
	app := newAPI(t, &stubGateway{shipments: map[string]entity.Shipment{}})
	auth := tokenFor(t, "u1", "operador")
	_, body := call(t, app, http.MethodPost, "/api/drafts", auth, nil)
	id := body["id"].(string)

	resp, body := call(t, app, http.MethodPost, "/api/drafts/"+id+"/next", auth, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, draft.FieldCustomer)
	assert.Contains(t, fields, draft.FieldRefCode)
	state := body["state"].(map[string]interface{})
	assert.Equal(t, float64(0), state["step"])
}

func TestWizardHTTP_BodyInvalido(t *testing.T) {
	app := newAPI(t, &stubGateway{shipments: map[string]entity.Shipment{}})
	auth := tokenFor(t, "u1", "operador")
	_, body := call(t, app, http.MethodPost, "/api/drafts", auth, nil)
	id := body["id"].(string)

	resp, body := call(t, app, http.MethodPost, "/api/drafts/"+id+"/items", auth, map[string]interface{}{"description": "x", "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "Quantity")

	resp, _ = call(t, app, http.MethodPost, "/api/drafts/"+id+"/goto/abc", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/drafts/"+id+"/goto/9", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWizardHTTP_OtroUsuarioYSinToken(t *testing.T) {
	app := newAPI(t, &stubGateway{shipments: map[string]entity.Shipment{}})
	_, body := call(t, app, http.MethodPost, "/api/drafts", tokenFor(t, "u1", "operador"), nil)
	id := body["id"].(string)

	resp, _ := call(t, app, http.MethodGet, "/api/drafts/"+id, tokenFor(t, "u2", "operador"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/drafts/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_RolDesconocidoRechazado(t *testing.T) {
	app := newAPI(t, &stubGateway{shipments: map[string]entity.Shipment{}})

	resp, body := call(t, app, http.MethodPost, "/api/drafts", tokenFor(t, "u1", "contador"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])

	resp, _ = call(t, app, http.MethodPost, "/api/drafts", tokenFor(t, "u1", "transportista"), nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestWizardHTTP_ListaBorradores(t *testing.T) {
	app := newAPI(t, &stubGateway{shipments: map[string]entity.Shipment{}})
	auth := tokenFor(t, "u1", "operador")
	_, body := call(t, app, http.MethodPost, "/api/drafts", auth, nil)
	id := body["id"].(string)
	fillWizard(t, app, auth, id)

	resp, body := call(t, app, http.MethodGet, "/api/drafts", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drafts := body["drafts"].([]interface{})
	require.Len(t, drafts, 1)
	row := drafts[0].(map[string]interface{})
	assert.Equal(t, id, row["id"])
	assert.Equal(t, "REF-9", row["ref_code"])
	assert.Equal(t, "12", row["total_value"])

	_, body = call(t, app, http.MethodGet, "/api/drafts", tokenFor(t, "u2", "operador"), nil)
	assert.Empty(t, body["drafts"])
}

func TestWizardHTTP_FalloRemotoDevuelve502(t *testing.T) {
	gw := &stubGateway{shipments: map[string]entity.Shipment{}, createErr: &draft.RemoteError{Status: 409, Message: "referencia duplicada"}}
	app := newAPI(t, gw)
	auth := tokenFor(t, "u1", "operador")
	_, body := call(t, app, http.MethodPost, "/api/drafts", auth, nil)
	id := body["id"].(string)
	fillWizard(t, app, auth, id)

	resp, body := call(t, app, http.MethodPost, "/api/drafts/"+id+"/submit", auth, nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "referencia duplicada", body["message"])

	_, body = call(t, app, http.MethodGet, "/api/drafts/"+id, auth, nil)
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, "referencia duplicada", errs[draft.FieldSubmit], "el borrador se conserva para reintentar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Modal de edición
// ──────────────────────────────────────────────────────────────────────────────

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("documents", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestEditHTTP_CargaParcialYRefresco(t *testing.T) {
	gw := &stubGateway{shipments: map[string]entity.Shipment{
		"sh-1": {ID: "sh-1", RefCode: "R", Status: entity.StatusAssigned},
	}}
	app := newAPI(t, gw)
	auth := tokenFor(t, "u1", "transportista")

	resp, body := call(t, app, http.MethodPost, "/api/shipments/sh-1/edit", auth, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, true, body["editable"])

	buf, ct := multipartBody(t, map[string]string{"pod.pdf": "%PDF-1.4", "notas.txt": "hola"})
	req := httptest.NewRequest(http.MethodPost, "/api/edits/"+id+"/documents", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", auth)
	resp, body = send(t, app, req)

	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	assert.Equal(t, []interface{}{"pod.pdf"}, body["uploaded"])
	assert.Contains(t, body["failed"], "notas.txt")
	docs := body["session"].(map[string]interface{})["draft"].(map[string]interface{})["documents"].([]interface{})
	require.Len(t, docs, 1)
	assert.Equal(t, "https://files/pod.pdf", docs[0].(map[string]interface{})["file_content"])
}

func TestEditHTTP_EnvioTerminalSoloAdmin(t *testing.T) {
	gw := &stubGateway{shipments: map[string]entity.Shipment{
		"sh-2": {ID: "sh-2", RefCode: "R", Status: entity.StatusDelivered},
	}}
	app := newAPI(t, gw)

	auth := tokenFor(t, "u1", "operador")
	_, body := call(t, app, http.MethodPost, "/api/shipments/sh-2/edit", auth, nil)
	id := body["id"].(string)
	assert.Equal(t, false, body["editable"])

	resp, _ := call(t, app, http.MethodPost, "/api/edits/"+id+"/save", auth, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := tokenFor(t, "u9", "admin")
	_, body = call(t, app, http.MethodPost, "/api/shipments/sh-2/edit", admin, nil)
	adminID := body["id"].(string)
	resp, body = call(t, app, http.MethodPost, "/api/edits/"+adminID+"/save", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["editable"])
}

func TestEditHTTP_ItemsFueraDeModoEdicion(t *testing.T) {
	gw := &stubGateway{shipments: map[string]entity.Shipment{"sh-3": {ID: "sh-3", Status: entity.StatusPending}}}
	app := newAPI(t, gw)
	auth := tokenFor(t, "u1", "operador")
	_, body := call(t, app, http.MethodPost, "/api/shipments/sh-3/edit", auth, nil)
	id := body["id"].(string)

	item := map[string]interface{}{"description": "pallet", "quantity": 1, "weight": 100, "value": 50}
	resp, _ := call(t, app, http.MethodPost, "/api/edits/"+id+"/items", auth, item)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/edits/"+id+"/items/edit", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = call(t, app, http.MethodPost, "/api/edits/"+id+"/items", auth, item)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["editing_items"])

	resp, _ = call(t, app, http.MethodPost, "/api/shipments/nada/edit", auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
