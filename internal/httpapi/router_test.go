package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmfab/rutero/internal/catalog"
	"github.com/vmfab/rutero/internal/claim"
	"github.com/vmfab/rutero/internal/evidence"
	"github.com/vmfab/rutero/internal/identity"
	"github.com/vmfab/rutero/internal/model"
	"github.com/vmfab/rutero/internal/sheet"
	"github.com/vmfab/rutero/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.OpenDB(t)
	cat := catalog.New(db)
	ev, err := evidence.New(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, sheet.New(db, cat), claim.New(db), cat, ev, identity.AllowAll{}, logger)
	return srv.Router()
}

type header map[string]string

func asOperador(id string) header {
	return header{"X-Operador-Id": id, "X-Operador-Nombre": "Operador " + id}
}

func asAdmin(id string) header {
	h := asOperador(id)
	h["X-Operador-Admin"] = "1"
	return h
}

func do(t *testing.T, r *gin.Engine, method, path string, h header, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range h {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_RequiresIdentity(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/maquinas", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSheetFlow(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	op := asOperador("op-1")
	admin := asAdmin("jefe")

	// Register a machine and its station template.
	w := do(t, r, http.MethodPost, "/api/maquinas", admin, gin.H{"nombre": "CNC 3", "tipo": "cnc"})
	require.Equal(t, http.StatusCreated, w.Code)
	var maquina model.Maquina
	decode(t, w, &maquina)

	for i, operacion := range []string{"Setup", "Cut", "Inspect"} {
		w = do(t, r, http.MethodPost, "/api/plantillas", admin, gin.H{
			"maquina_tipo": "cnc", "operacion": operacion, "orden": i + 1, "centro_trabajo": "Mill",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// Ingest a sheet; stations come from the template.
	w = do(t, r, http.MethodPost, "/api/hojas-ruta", op, gin.H{
		"maquina_id": maquina.ID, "nombre": "HR-2024-050", "cantidad_piezas": 50,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var view model.HojaView
	decode(t, w, &view)
	require.Len(t, view.Estaciones, 3)
	assert.Equal(t, 50, view.Estaciones[0].TotalPiezas)

	// The stations show up in the pool, claiming one removes it.
	w = do(t, r, http.MethodGet, "/api/items/estacion/disponibles", op, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pool []model.WorkItemView
	decode(t, w, &pool)
	require.Len(t, pool, 3)

	first := pool[0].ID
	w = do(t, r, http.MethodPost, "/api/items/estacion/"+first+"/reclamar", op, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/items/estacion/"+first+"/reclamar", asOperador("op-2"), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/items/estacion/disponibles", op, nil)
	decode(t, w, &pool)
	assert.Len(t, pool, 2)

	// The sheet reports the claimed station as active.
	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/hojas-ruta/%d", view.Hoja.ID), op, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	require.NotNil(t, view.EstacionActiva)
	assert.Equal(t, first, view.EstacionActiva.ID)

	// Finish the station and approve the sheet.
	w = do(t, r, http.MethodPost, "/api/items/estacion/"+first+"/avanzar", op, gin.H{"estado": "completada"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/hojas-ruta/%d/aprobar", view.Hoja.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.True(t, view.Hoja.Aprobada)
}

func TestTicketFlowOverHTTP(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	opA := asOperador("op-a")
	opB := asOperador("op-b")

	w := do(t, r, http.MethodPost, "/api/tickets", opA, gin.H{
		"titulo": "Falla en prensa", "descripcion": "no enciende",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var ticket model.WorkItemView
	decode(t, w, &ticket)
	// Solicitante defaults to the caller.
	assert.Equal(t, "op-a", ticket.Solicitante)

	w = do(t, r, http.MethodPost, "/api/items/ticket/"+ticket.ID+"/reclamar", opB, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The owner annotates; a stranger cannot.
	w = do(t, r, http.MethodPost, "/api/items/ticket/"+ticket.ID+"/comentarios", opB, gin.H{"cuerpo": "revisando"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/api/items/ticket/"+ticket.ID+"/comentarios", asOperador("op-c"), gin.H{"cuerpo": "intruso"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The requester can still read their ticket while claimed.
	w = do(t, r, http.MethodGet, "/api/items/ticket/"+ticket.ID, opA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &ticket)
	require.Len(t, ticket.Comentarios, 1)
	assert.Equal(t, "revisando", ticket.Comentarios[0].Cuerpo)

	w = do(t, r, http.MethodPost, "/api/items/ticket/"+ticket.ID+"/avanzar", opB, gin.H{"estado": "resuelto"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &ticket)
	assert.Equal(t, "resuelto", ticket.Estado)
}

func TestItemEndpoints_ErrorMapping(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	op := asOperador("op-1")

	w := do(t, r, http.MethodGet, "/api/items/maquina/disponibles", op, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/items/estacion/9999/reclamar", op, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var payload struct {
		Codigo string `json:"codigo"`
	}
	decode(t, w, &payload)
	assert.Equal(t, "NOT_FOUND", payload.Codigo)
}

func TestRepairSheetEndpoint(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	admin := asAdmin("jefe")

	w := do(t, r, http.MethodPost, "/api/maquinas", admin, gin.H{"nombre": "Torno 1", "tipo": "torno"})
	require.Equal(t, http.StatusCreated, w.Code)
	var maquina model.Maquina
	decode(t, w, &maquina)

	// Sheet created before the template existed gets zero stations.
	w = do(t, r, http.MethodPost, "/api/hojas-ruta", admin, gin.H{
		"maquina_id": maquina.ID, "nombre": "HR-vieja", "cantidad_piezas": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var view model.HojaView
	decode(t, w, &view)
	require.Empty(t, view.Estaciones)

	w = do(t, r, http.MethodPost, "/api/plantillas", admin, gin.H{
		"maquina_tipo": "torno", "operacion": "Cilindrado", "orden": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	repair := func() int {
		w := do(t, r, http.MethodPost, fmt.Sprintf("/api/hojas-ruta/%d/reparar", view.Hoja.ID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Creadas int `json:"estaciones_creadas"`
		}
		decode(t, w, &out)
		return out.Creadas
	}
	assert.Equal(t, 1, repair())
	assert.Equal(t, 0, repair())
}

func TestEvidenceUploadDownload(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	op := asOperador("op-1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("evidencia", "foto.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("imagen"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evidencias", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range op {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var out struct {
		Referencia string `json:"referencia"`
	}
	decode(t, w, &out)
	require.NotEmpty(t, out.Referencia)

	got := do(t, r, http.MethodGet, "/api/evidencias/"+out.Referencia, op, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "imagen", got.Body.String())
}
