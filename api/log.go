package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mauroere/padron/internal/importer"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository"
)

type LogHandler struct {
	logRepo repository.LogRepo
}

func NewLogHandler(lr repository.LogRepo) *LogHandler {
	return &LogHandler{logRepo: lr}
}

// List returns change-log entries, newest first, with optional filters plus
// per-accion and per-usuario tallies of the returned page.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repository.FiltroLog{
		EmpleadoDNI: strings.TrimSpace(q.Get("dni")),
		Accion:      strings.TrimSpace(q.Get("accion")),
	}
	if f.Accion != "" && f.Accion != models.AccionAlta && f.Accion != models.AccionModificacion && f.Accion != models.AccionBaja {
		http.Error(w, "acción desconocida", http.StatusBadRequest)
		return
	}
	if v := q.Get("usuario_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid usuario_id", http.StatusBadRequest)
			return
		}
		f.UsuarioID = id
	}
	if v := q.Get("desde"); v != "" {
		t, err := importer.NormalizarFecha(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Desde = t.UnixMilli()
	}
	if v := q.Get("hasta"); v != "" {
		t, err := importer.NormalizarFecha(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// inclusive upper bound: end of the given day
		f.Hasta = t.UnixMilli() + 24*60*60*1000 - 1
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

	items, err := h.logRepo.ListLog(r.Context(), f, limit, offset)
	if err != nil {
		http.Error(w, "failed to list log", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.LogCambio{}
	}

	porAccion := map[string]int{}
	porUsuario := map[string]int{}
	for _, l := range items {
		porAccion[l.Accion]++
		porUsuario[strconv.FormatInt(l.UsuarioID, 10)]++
	}

	writeJSON(w, map[string]any{
		"limit":       limit,
		"offset":      offset,
		"items":       items,
		"por_accion":  porAccion,
		"por_usuario": porUsuario,
	}, http.StatusOK)
}
