package api

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mauroere/padron/internal/importer"
	"github.com/mauroere/padron/pkg/repository"
)

// maxImportSize caps the multipart body of an import request (10 MiB).
const maxImportSize = 10 << 20

type ImportarHandler struct {
	empleadoRepo repository.EmpleadoRepo
	logRepo      repository.LogRepo
}

func NewImportarHandler(er repository.EmpleadoRepo, lr repository.LogRepo) *ImportarHandler {
	return &ImportarHandler{empleadoRepo: er, logRepo: lr}
}

// Importar runs one bulk-import batch: a CSV file under the "archivo" form
// field plus a JSON mapping specification under "mapeo". The whole batch is
// processed synchronously and the reconciliation result is returned.
func (h *ImportarHandler) Importar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	mapeoJSON := []byte(r.FormValue("mapeo"))
	if len(mapeoJSON) == 0 {
		http.Error(w, "missing mapeo", http.StatusBadRequest)
		return
	}
	if err := importer.ValidarEspecificacionJSON(ctx, mapeoJSON); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var mapeo importer.EspecificacionMapeo
	if err := json.Unmarshal(mapeoJSON, &mapeo); err != nil {
		http.Error(w, fmt.Sprintf("invalid mapeo: %v", err), http.StatusBadRequest)
		return
	}

	archivo, _, err := r.FormFile("archivo")
	if err != nil {
		http.Error(w, "missing archivo", http.StatusBadRequest)
		return
	}
	defer archivo.Close()

	tabla, err := leerCSV(archivo)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filas, omitidas, err := mapeo.Aplicar(tabla)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := importer.NewReconciliador(h.empleadoRepo, h.logRepo, logger)
	res := rec.Reconciliar(ctx, filas, usuarioIDDe(r))
	res.Omitidas += omitidas

	writeJSON(w, res, http.StatusOK)
}

// leerCSV reads the whole file: the first record is the header of source
// column names, every following record is a data row. Ragged rows are
// tolerated; the mapper ignores missing cells.
func leerCSV(r io.Reader) (importer.Tabla, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return importer.Tabla{}, fmt.Errorf("archivo inválido: %w", err)
	}
	if len(records) == 0 {
		return importer.Tabla{}, fmt.Errorf("archivo vacío")
	}

	return importer.Tabla{Columnas: records[0], Filas: records[1:]}, nil
}
