package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository"
)

// ErrorFila describes a row-level failure. Row numbers are 1-based over the
// data rows of the source table (the header is not counted), so they stay
// valid even when the mapper dropped earlier rows.
type ErrorFila struct {
	Fila   int    `json:"fila"`
	DNI    string `json:"dni,omitempty"`
	Motivo string `json:"motivo"`
}

// ResultadoLote aggregates the outcome of one reconciliation batch.
type ResultadoLote struct {
	LoteID       string             `json:"lote_id"`
	Creadas      int                `json:"creadas"`
	Actualizadas int                `json:"actualizadas"`
	SinCambios   int                `json:"sin_cambios"`
	Omitidas     int                `json:"omitidas"`
	Cambios      []models.LogCambio `json:"cambios"`
	Errores      []ErrorFila        `json:"errores,omitempty"`
}

// Reconciliador applies canonical rows against the stored roster: it creates
// employees for unseen DNIs and stages non-blank, changed fields onto
// existing ones. A blank import cell never erases a stored value.
type Reconciliador struct {
	empleados repository.EmpleadoRepo
	log       repository.LogRepo
	logger    *slog.Logger
}

func NewReconciliador(er repository.EmpleadoRepo, lr repository.LogRepo, logger *slog.Logger) *Reconciliador {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &Reconciliador{empleados: er, log: lr, logger: logger}
}

// Reconciliar processes the rows strictly in input order. Each row is looked
// up through the repository, so later rows with a duplicate DNI observe the
// writes of earlier rows in the same batch. Row failures are collected, never
// fatal to the batch.
func (r *Reconciliador) Reconciliar(ctx context.Context, filas []FilaMapeada, usuarioID int64) *ResultadoLote {
	res := &ResultadoLote{LoteID: uuid.NewString()}

	for _, fila := range filas {
		nro := fila.Numero

		dni := strings.TrimSpace(fila.Valores[CampoDNI])
		if !ValidarDNI(dni) {
			res.Omitidas++
			continue
		}

		existente, err := r.empleados.GetEmpleadoByDNI(ctx, dni)
		if err != nil {
			res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: dni, Motivo: fmt.Sprintf("consulta: %v", err)})
			continue
		}

		if existente == nil {
			r.crear(ctx, nro, dni, fila.Valores, usuarioID, res)
			continue
		}
		r.actualizar(ctx, nro, existente, fila.Valores, usuarioID, res)
	}

	r.logger.Info("lote reconciliado",
		slog.String("lote_id", res.LoteID),
		slog.Int("creadas", res.Creadas),
		slog.Int("actualizadas", res.Actualizadas),
		slog.Int("sin_cambios", res.SinCambios),
		slog.Int("omitidas", res.Omitidas),
		slog.Int("errores", len(res.Errores)),
	)

	return res
}

func (r *Reconciliador) crear(ctx context.Context, nro int, dni string, fila FilaCanonica, usuarioID int64, res *ResultadoLote) {
	for _, req := range []string{CampoNombre, CampoApellido, CampoFechaIngreso} {
		if strings.TrimSpace(fila[req]) == "" {
			res.Omitidas++
			res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: dni, Motivo: fmt.Sprintf("alta sin campo requerido %q", req)})
			return
		}
	}

	fecha, err := NormalizarFecha(fila[CampoFechaIngreso])
	if err != nil {
		res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: dni, Motivo: err.Error()})
		return
	}

	e := &models.Empleado{
		DNI:          dni,
		Nombre:       strings.TrimSpace(fila[CampoNombre]),
		Apellido:     strings.TrimSpace(fila[CampoApellido]),
		FechaIngreso: fecha.UnixMilli(),
		Estado:       NormalizarEstado(fila[CampoEstado]),
		Skill:        strings.TrimSpace(fila[CampoSkill]),
		EsLider:      NormalizarBool(fila[CampoEsLider]),
		Email:        strings.TrimSpace(fila[CampoEmail]),
		Telefono:     strings.TrimSpace(fila[CampoTelefono]),
		Direccion:    strings.TrimSpace(fila[CampoDireccion]),
		Area:         strings.TrimSpace(fila[CampoArea]),
		Proyecto:     strings.TrimSpace(fila[CampoProyecto]),
	}
	for _, k := range clavesConPrefijo(fila, PrefijoUsuarioExterno) {
		if v := strings.TrimSpace(fila[k]); v != "" {
			if e.UsuariosExternos == nil {
				e.UsuariosExternos = map[string]string{}
			}
			e.UsuariosExternos[strings.TrimPrefix(k, PrefijoUsuarioExterno)] = v
		}
	}
	for _, k := range clavesConPrefijo(fila, PrefijoExtra) {
		if v := strings.TrimSpace(fila[k]); v != "" {
			if e.Extras == nil {
				e.Extras = map[string]string{}
			}
			e.Extras[strings.TrimPrefix(k, PrefijoExtra)] = v
		}
	}

	if _, err := r.empleados.CreateEmpleado(ctx, e); err != nil {
		motivo := fmt.Sprintf("alta: %v", err)
		if errors.Is(err, repository.ErrDNIDuplicado) {
			motivo = "conflicto: dni creado por otra importación concurrente"
		}
		res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: dni, Motivo: motivo})
		return
	}

	entrada := &models.LogCambio{
		UsuarioID:   usuarioID,
		EmpleadoDNI: dni,
		Accion:      models.AccionAlta,
		Detalle:     fmt.Sprintf("Importación masiva: %s %s", e.Nombre, e.Apellido),
	}
	if _, err := r.log.AppendLog(ctx, entrada); err != nil {
		res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: dni, Motivo: fmt.Sprintf("log de alta: %v", err)})
	} else {
		res.Cambios = append(res.Cambios, *entrada)
	}
	res.Creadas++
}

func (r *Reconciliador) actualizar(ctx context.Context, nro int, e *models.Empleado, fila FilaCanonica, usuarioID int64, res *ResultadoLote) {
	detalles, err := AplicarCampos(e, fila)
	if err != nil {
		res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: e.DNI, Motivo: err.Error()})
		return
	}

	if len(detalles) == 0 {
		res.SinCambios++
		return
	}

	if err := r.empleados.UpdateEmpleado(ctx, e); err != nil {
		res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: e.DNI, Motivo: fmt.Sprintf("modificación: %v", err)})
		return
	}

	entrada := &models.LogCambio{
		UsuarioID:   usuarioID,
		EmpleadoDNI: e.DNI,
		Accion:      models.AccionModificacion,
		Detalle:     "Importación: " + strings.Join(detalles, ", "),
	}
	if _, err := r.log.AppendLog(ctx, entrada); err != nil {
		res.Errores = append(res.Errores, ErrorFila{Fila: nro, DNI: e.DNI, Motivo: fmt.Sprintf("log de modificación: %v", err)})
	} else {
		res.Cambios = append(res.Cambios, *entrada)
	}
	res.Actualizadas++
}

// prepararMapas stages per-key changes of the dynamic map targets, in sorted
// key order so change-log descriptions are deterministic.
func prepararMapas(e *models.Empleado, fila FilaCanonica) []*cambio {
	var staged []*cambio

	for _, grupo := range []struct {
		prefijo string
		get     func() map[string]string
		set     func(clave, valor string)
	}{
		{
			prefijo: PrefijoUsuarioExterno,
			get:     func() map[string]string { return e.UsuariosExternos },
			set: func(clave, valor string) {
				if e.UsuariosExternos == nil {
					e.UsuariosExternos = map[string]string{}
				}
				e.UsuariosExternos[clave] = valor
			},
		},
		{
			prefijo: PrefijoExtra,
			get:     func() map[string]string { return e.Extras },
			set: func(clave, valor string) {
				if e.Extras == nil {
					e.Extras = map[string]string{}
				}
				e.Extras[clave] = valor
			},
		},
	} {
		grupo := grupo
		for _, k := range clavesConPrefijo(fila, grupo.prefijo) {
			nuevo := strings.TrimSpace(fila[k])
			if nuevo == "" {
				continue
			}
			clave := strings.TrimPrefix(k, grupo.prefijo)
			viejo := grupo.get()[clave]
			if nuevo == viejo {
				continue
			}
			staged = append(staged, &cambio{
				campo:   k,
				viejo:   viejo,
				nuevo:   nuevo,
				aplicar: func(*models.Empleado) { grupo.set(clave, nuevo) },
			})
		}
	}

	return staged
}

func clavesConPrefijo(fila FilaCanonica, prefijo string) []string {
	var claves []string
	for k := range fila {
		if strings.HasPrefix(k, prefijo) && len(k) > len(prefijo) {
			claves = append(claves, k)
		}
	}
	sort.Strings(claves)
	return claves
}
