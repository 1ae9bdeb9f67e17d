package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mauroere/padron/internal/models"
)

// Canonical field names. They double as mapping targets and as the labels
// used in change-log descriptions.
const (
	CampoDNI          = "dni"
	CampoNombre       = "nombre"
	CampoApellido     = "apellido"
	CampoFechaIngreso = "fecha_ingreso"
	CampoEstado       = "estado"
	CampoSkill        = "skill"
	CampoEsLider      = "es_lider"
	CampoEmail        = "email"
	CampoTelefono     = "telefono"
	CampoDireccion    = "direccion"
	CampoArea         = "area"
	CampoProyecto     = "proyecto"
)

// cambio is one staged field assignment: the record is only touched when the
// whole row's staged set is applied.
type cambio struct {
	campo   string
	viejo   string
	nuevo   string
	aplicar func(e *models.Empleado)
}

// campoEmpleado describes how the diff loop reads, compares and writes one
// scalar field. The table below is the enumerated replacement for reflecting
// over the entity's attributes.
type campoEmpleado struct {
	nombre string

	// preparar compares the raw cell against the current record and returns
	// the staged change, nil when the values are equal, or an error when the
	// cell cannot be interpreted.
	preparar func(e *models.Empleado, crudo string) (*cambio, error)
}

func campoTexto(nombre string, get func(*models.Empleado) string, set func(*models.Empleado, string)) campoEmpleado {
	return campoEmpleado{
		nombre: nombre,
		preparar: func(e *models.Empleado, crudo string) (*cambio, error) {
			nuevo := strings.TrimSpace(crudo)
			viejo := get(e)
			if nuevo == viejo {
				return nil, nil
			}
			return &cambio{campo: nombre, viejo: viejo, nuevo: nuevo, aplicar: func(e *models.Empleado) { set(e, nuevo) }}, nil
		},
	}
}

// camposEmpleado drives the update diff. DNI is deliberately absent: the
// natural key is never reassigned once a record exists.
var camposEmpleado = []campoEmpleado{
	campoTexto(CampoNombre, func(e *models.Empleado) string { return e.Nombre }, func(e *models.Empleado, v string) { e.Nombre = v }),
	campoTexto(CampoApellido, func(e *models.Empleado) string { return e.Apellido }, func(e *models.Empleado, v string) { e.Apellido = v }),
	{
		nombre: CampoFechaIngreso,
		preparar: func(e *models.Empleado, crudo string) (*cambio, error) {
			t, err := NormalizarFecha(crudo)
			if err != nil {
				return nil, err
			}
			nuevo := t.UnixMilli()
			if e.FechaIngreso != 0 && DiaMilis(e.FechaIngreso) == nuevo {
				return nil, nil
			}
			return &cambio{
				campo:   CampoFechaIngreso,
				viejo:   FormatearFecha(e.FechaIngreso),
				nuevo:   FormatearFecha(nuevo),
				aplicar: func(e *models.Empleado) { e.FechaIngreso = nuevo },
			}, nil
		},
	},
	{
		nombre: CampoEstado,
		preparar: func(e *models.Empleado, crudo string) (*cambio, error) {
			nuevo := NormalizarEstado(crudo)
			if nuevo == e.Estado {
				return nil, nil
			}
			viejo := e.Estado
			return &cambio{campo: CampoEstado, viejo: viejo, nuevo: nuevo, aplicar: func(e *models.Empleado) { e.Estado = nuevo }}, nil
		},
	},
	campoTexto(CampoSkill, func(e *models.Empleado) string { return e.Skill }, func(e *models.Empleado, v string) { e.Skill = v }),
	{
		nombre: CampoEsLider,
		preparar: func(e *models.Empleado, crudo string) (*cambio, error) {
			nuevo := NormalizarBool(crudo)
			if nuevo == e.EsLider {
				return nil, nil
			}
			return &cambio{
				campo:   CampoEsLider,
				viejo:   strconv.FormatBool(e.EsLider),
				nuevo:   strconv.FormatBool(nuevo),
				aplicar: func(e *models.Empleado) { e.EsLider = nuevo },
			}, nil
		},
	},
	campoTexto(CampoEmail, func(e *models.Empleado) string { return e.Email }, func(e *models.Empleado, v string) { e.Email = v }),
	campoTexto(CampoTelefono, func(e *models.Empleado) string { return e.Telefono }, func(e *models.Empleado, v string) { e.Telefono = v }),
	campoTexto(CampoDireccion, func(e *models.Empleado) string { return e.Direccion }, func(e *models.Empleado, v string) { e.Direccion = v }),
	campoTexto(CampoArea, func(e *models.Empleado) string { return e.Area }, func(e *models.Empleado, v string) { e.Area = v }),
	campoTexto(CampoProyecto, func(e *models.Empleado) string { return e.Proyecto }, func(e *models.Empleado, v string) { e.Proyecto = v }),
}

// AplicarCampos applies every non-blank value that differs from the stored
// one and returns a "campo: viejo -> nuevo" description per effective change.
// Direct edits share this with the import engine so both produce the same
// change-log descriptions and never blank a field.
func AplicarCampos(e *models.Empleado, valores map[string]string) ([]string, error) {
	var staged []*cambio

	for _, campo := range camposEmpleado {
		crudo, ok := valores[campo.nombre]
		if !ok || strings.TrimSpace(crudo) == "" {
			continue
		}
		ch, err := campo.preparar(e, crudo)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", campo.nombre, err)
		}
		if ch != nil {
			staged = append(staged, ch)
		}
	}
	staged = append(staged, prepararMapas(e, valores)...)

	detalles := make([]string, 0, len(staged))
	for _, ch := range staged {
		ch.aplicar(e)
		detalles = append(detalles, ch.campo+": "+ch.viejo+" -> "+ch.nuevo)
	}

	return detalles, nil
}
