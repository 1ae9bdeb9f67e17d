package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauroere/padron/api"
	"github.com/mauroere/padron/internal/importer"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository/mock"
)

func multipartImport(t *testing.T, mapeo, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if mapeo != "" {
		if err := mw.WriteField("mapeo", mapeo); err != nil {
			t.Fatalf("write mapeo field: %v", err)
		}
	}
	if csv != "" {
		fw, err := mw.CreateFormFile("archivo", "empleados.csv")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(fw, csv); err != nil {
			t.Fatalf("write csv: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return &buf, mw.FormDataContentType()
}

func TestImportarEndToEnd(t *testing.T) {
	mocks := mock.NewMocks()
	// one employee already on the roster: the batch updates it
	mocks.EmpRepo.Empleados["12345678"] = &models.Empleado{
		ID: 1, DNI: "12345678", Nombre: "Juan", Apellido: "Perez",
		FechaIngreso: diaMilis(2020, 2, 1), Estado: models.EstadoActivo, Skill: "Java",
	}
	h := api.NewImportarHandler(mocks.EmpRepo, mocks.LogRepo)

	mapeo := `{"reglas":[
		{"columna":"Documento","accion":"asignar","campo":"dni"},
		{"columna":"Nombre Completo","accion":"dividir","separador":"\\s+","campos":["nombre","apellido"]},
		{"columna":"Ingreso","accion":"asignar","campo":"fecha_ingreso"},
		{"columna":"Skill","accion":"asignar","campo":"skill"},
		{"columna":"Lider","accion":"asignar","campo":"es_lider"}
	]}`
	csv := "Documento,Nombre Completo,Ingreso,Skill,Lider\n" +
		"12345678,Juan Perez,01/02/2020,Go,no\n" + // update: skill Java -> Go
		"87654321,Ana Gomez,10/05/2021,Python,si\n" + // create
		",Sin Documento,01/01/2021,QA,no\n" + // dropped by the mapper
		"12a,Mal Documento,01/01/2021,QA,no\n" // invalid dni, skipped

	body, ct := multipartImport(t, mapeo, csv)
	req := httptest.NewRequest(http.MethodPost, "/importar", body)
	req.Header.Set("Content-Type", ct)
	req = req.WithContext(context.WithValue(req.Context(), api.CtxUsuarioID, int64(7)))
	w := httptest.NewRecorder()
	h.Importar(w, req)

	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 200 got %d body=%s", res.StatusCode, string(data))
	}

	var out importer.ResultadoLote
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if out.Creadas != 1 || out.Actualizadas != 1 || out.Omitidas != 2 || out.SinCambios != 0 {
		t.Fatalf("unexpected result: %+v", out)
	}
	if out.LoteID == "" {
		t.Fatalf("expected a lote id")
	}

	nuevo := mocks.EmpRepo.Empleados["87654321"]
	if nuevo == nil || nuevo.Nombre != "Ana" || nuevo.Apellido != "Gomez" || !nuevo.EsLider {
		t.Fatalf("created empleado wrong: %#v", nuevo)
	}
	if got := mocks.EmpRepo.Empleados["12345678"].Skill; got != "Go" {
		t.Fatalf("existing empleado not updated: %q", got)
	}

	if len(mocks.LogRepo.Entradas) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(mocks.LogRepo.Entradas))
	}
}

func TestImportarBadRequests(t *testing.T) {
	mapeoValido := `{"reglas":[{"columna":"dni","accion":"asignar","campo":"dni"}]}`

	tests := []struct {
		name  string
		mapeo string
		csv   string
	}{
		{name: "MissingMapeo", mapeo: "", csv: "dni\n12345678\n"},
		{name: "MapeoNotJSON", mapeo: "{broken", csv: "dni\n12345678\n"},
		{name: "MapeoFailsSchema", mapeo: `{"reglas":[]}`, csv: "dni\n12345678\n"},
		{name: "MapeoSinDNI", mapeo: `{"reglas":[{"columna":"n","accion":"asignar","campo":"nombre"}]}`, csv: "n\nJuan\n"},
		{name: "MissingArchivo", mapeo: mapeoValido, csv: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			h := api.NewImportarHandler(mocks.EmpRepo, mocks.LogRepo)

			body, ct := multipartImport(t, tt.mapeo, tt.csv)
			req := httptest.NewRequest(http.MethodPost, "/importar", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			h.Importar(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				data, _ := io.ReadAll(w.Result().Body)
				t.Fatalf("expected 400 got %d body=%s", w.Result().StatusCode, string(data))
			}
			if len(mocks.EmpRepo.Empleados) != 0 {
				t.Fatalf("bad request must not write: %#v", mocks.EmpRepo.Empleados)
			}
		})
	}
}

func TestImportarEmptyArchivo(t *testing.T) {
	mocks := mock.NewMocks()
	h := api.NewImportarHandler(mocks.EmpRepo, mocks.LogRepo)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("mapeo", `{"reglas":[{"columna":"dni","accion":"asignar","campo":"dni"}]}`); err != nil {
		t.Fatalf("write mapeo field: %v", err)
	}
	if _, err := mw.CreateFormFile("archivo", "vacio.csv"); err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/importar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.Importar(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty archivo got %d", w.Result().StatusCode)
	}
}

func TestImportarNotMultipart(t *testing.T) {
	mocks := mock.NewMocks()
	h := api.NewImportarHandler(mocks.EmpRepo, mocks.LogRepo)

	req := httptest.NewRequest(http.MethodPost, "/importar", bytes.NewReader([]byte("plain body")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Importar(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Result().StatusCode)
	}
}
