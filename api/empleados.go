package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mauroere/padron/internal/importer"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository"
)

type EmpleadosHandler struct {
	empleadoRepo repository.EmpleadoRepo
	logRepo      repository.LogRepo

	// borradoFisico selects the delete policy: when false, employees with
	// change-log history are marked inactive instead of being removed.
	borradoFisico bool
}

func NewEmpleadosHandler(er repository.EmpleadoRepo, lr repository.LogRepo, borradoFisico bool) *EmpleadosHandler {
	return &EmpleadosHandler{empleadoRepo: er, logRepo: lr, borradoFisico: borradoFisico}
}

type createEmpleadoRequest struct {
	DNI          string            `json:"dni"`
	Nombre       string            `json:"nombre"`
	Apellido     string            `json:"apellido"`
	FechaIngreso string            `json:"fecha_ingreso"`
	Estado       string            `json:"estado"`
	Skill        string            `json:"skill"`
	EsLider      bool              `json:"es_lider"`
	Email        string            `json:"email"`
	Telefono     string            `json:"telefono"`
	Direccion    string            `json:"direccion"`
	Area         string            `json:"area"`
	Proyecto     string            `json:"proyecto"`
	UsuariosExt  map[string]string `json:"usuarios_externos"`
	Extras       map[string]string `json:"extras"`
}

func (h *EmpleadosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmpleadoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	req.DNI = strings.TrimSpace(req.DNI)
	if !importer.ValidarDNI(req.DNI) {
		http.Error(w, "dni inválido", http.StatusBadRequest)
		return
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Apellido = strings.TrimSpace(req.Apellido)
	if req.Nombre == "" || req.Apellido == "" || strings.TrimSpace(req.FechaIngreso) == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}

	fecha, err := importer.NormalizarFecha(req.FechaIngreso)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e := &models.Empleado{
		DNI:              req.DNI,
		Nombre:           req.Nombre,
		Apellido:         req.Apellido,
		FechaIngreso:     fecha.UnixMilli(),
		Estado:           importer.NormalizarEstado(req.Estado),
		Skill:            strings.TrimSpace(req.Skill),
		EsLider:          req.EsLider,
		Email:            strings.TrimSpace(req.Email),
		Telefono:         strings.TrimSpace(req.Telefono),
		Direccion:        strings.TrimSpace(req.Direccion),
		Area:             strings.TrimSpace(req.Area),
		Proyecto:         strings.TrimSpace(req.Proyecto),
		UsuariosExternos: req.UsuariosExt,
		Extras:           req.Extras,
	}

	ctx := r.Context()
	id, err := h.empleadoRepo.CreateEmpleado(ctx, e)
	if err != nil {
		if err == repository.ErrDNIDuplicado {
			http.Error(w, "dni ya registrado", http.StatusConflict)
			return
		}
		http.Error(w, "failed to store empleado", http.StatusInternalServerError)
		return
	}
	e.ID = id

	entrada := &models.LogCambio{
		UsuarioID:   usuarioIDDe(r),
		EmpleadoDNI: e.DNI,
		Accion:      models.AccionAlta,
		Detalle:     fmt.Sprintf("Alta de empleado: %s %s", e.Nombre, e.Apellido),
	}
	if _, err := h.logRepo.AppendLog(ctx, entrada); err != nil {
		logger.Error("append alta log", "err", err)
	}

	writeJSON(w, e, http.StatusCreated)
}

func (h *EmpleadosHandler) Get(w http.ResponseWriter, r *http.Request) {
	dni := mux.Vars(r)["dni"]
	e, err := h.empleadoRepo.GetEmpleadoByDNI(r.Context(), dni)
	if err != nil {
		http.Error(w, "failed to get empleado", http.StatusInternalServerError)
		return
	}
	if e == nil {
		http.Error(w, "empleado no encontrado", http.StatusNotFound)
		return
	}

	writeJSON(w, e, http.StatusOK)
}

// Update applies the non-blank fields of the request body onto the stored
// record and authors one change-log entry enumerating the effective changes.
// A no-op update writes nothing and logs nothing.
func (h *EmpleadosHandler) Update(w http.ResponseWriter, r *http.Request) {
	dni := mux.Vars(r)["dni"]

	var datos map[string]string
	if err := json.NewDecoder(r.Body).Decode(&datos); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	delete(datos, importer.CampoDNI) // the natural key is immutable

	ctx := r.Context()
	e, err := h.empleadoRepo.GetEmpleadoByDNI(ctx, dni)
	if err != nil {
		http.Error(w, "failed to get empleado", http.StatusInternalServerError)
		return
	}
	if e == nil {
		http.Error(w, "empleado no encontrado", http.StatusNotFound)
		return
	}

	detalles, err := importer.AplicarCampos(e, datos)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(detalles) > 0 {
		if err := h.empleadoRepo.UpdateEmpleado(ctx, e); err != nil {
			http.Error(w, "failed to update empleado", http.StatusInternalServerError)
			return
		}

		entrada := &models.LogCambio{
			UsuarioID:   usuarioIDDe(r),
			EmpleadoDNI: dni,
			Accion:      models.AccionModificacion,
			Detalle:     "Cambios: " + strings.Join(detalles, ", "),
		}
		if _, err := h.logRepo.AppendLog(ctx, entrada); err != nil {
			logger.Error("append modificación log", "err", err)
		}
	}

	writeJSON(w, e, http.StatusOK)
}

// Delete removes an employee. Admin only. When the DNI has audit history and
// physical deletion is disabled, the record is marked inactive instead so the
// log keeps pointing at a real employee.
func (h *EmpleadosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !esAdmin(r) {
		http.Error(w, "Admin role required", http.StatusForbidden)
		return
	}

	dni := mux.Vars(r)["dni"]
	ctx := r.Context()

	e, err := h.empleadoRepo.GetEmpleadoByDNI(ctx, dni)
	if err != nil {
		http.Error(w, "failed to get empleado", http.StatusInternalServerError)
		return
	}
	if e == nil {
		http.Error(w, "empleado no encontrado", http.StatusNotFound)
		return
	}

	fisico := h.borradoFisico
	if !fisico {
		// without history there is nothing the log would dangle from
		n, err := h.logRepo.CountLogByDNI(ctx, dni)
		if err != nil {
			http.Error(w, "failed to check history", http.StatusInternalServerError)
			return
		}
		fisico = n == 0
	}

	if fisico {
		if err := h.empleadoRepo.DeleteEmpleado(ctx, dni); err != nil {
			http.Error(w, "failed to delete empleado", http.StatusInternalServerError)
			return
		}
	} else {
		e.Estado = models.EstadoInactivo
		if err := h.empleadoRepo.UpdateEmpleado(ctx, e); err != nil {
			http.Error(w, "failed to deactivate empleado", http.StatusInternalServerError)
			return
		}
	}

	entrada := &models.LogCambio{
		UsuarioID:   usuarioIDDe(r),
		EmpleadoDNI: dni,
		Accion:      models.AccionBaja,
		Detalle:     fmt.Sprintf("Baja de empleado: %s %s", e.Nombre, e.Apellido),
	}
	if _, err := h.logRepo.AppendLog(ctx, entrada); err != nil {
		logger.Error("append baja log", "err", err)
	}

	writeJSON(w, map[string]any{"dni": dni, "borrado_fisico": fisico}, http.StatusOK)
}

func (h *EmpleadosHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repository.FiltroEmpleados{
		DNI:      strings.TrimSpace(q.Get("dni")),
		Nombre:   strings.TrimSpace(q.Get("nombre")),
		Apellido: strings.TrimSpace(q.Get("apellido")),
		Skill:    strings.TrimSpace(q.Get("skill")),
	}
	if v := q.Get("estado"); v != "" {
		f.Estado = importer.NormalizarEstado(v)
	}
	if v := q.Get("es_lider"); v != "" {
		lider := importer.NormalizarBool(v)
		f.EsLider = &lider
	}
	if v := q.Get("fecha_desde"); v != "" {
		t, err := importer.NormalizarFecha(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.FechaDesde = t.UnixMilli()
	}
	if v := q.Get("fecha_hasta"); v != "" {
		t, err := importer.NormalizarFecha(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.FechaHasta = t.UnixMilli()
	}

	limit := 50
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	ctx := r.Context()
	items, err := h.empleadoRepo.ListEmpleados(ctx, f, limit, offset)
	if err != nil {
		http.Error(w, "failed to list empleados", http.StatusInternalServerError)
		return
	}
	total, err := h.empleadoRepo.CountEmpleados(ctx, f)
	if err != nil {
		http.Error(w, "failed to count empleados", http.StatusInternalServerError)
		return
	}

	if items == nil {
		items = []models.Empleado{}
	}

	writeJSON(w, map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}, http.StatusOK)
}

func (h *EmpleadosHandler) Resumen(w http.ResponseWriter, r *http.Request) {
	res, err := h.empleadoRepo.ResumenEmpleados(r.Context())
	if err != nil {
		http.Error(w, "failed to build resumen", http.StatusInternalServerError)
		return
	}

	writeJSON(w, res, http.StatusOK)
}
