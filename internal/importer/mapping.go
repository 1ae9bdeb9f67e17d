package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// AccionRegla is what a mapping rule does with one source column.
type AccionRegla string

const (
	ReglaIgnorar AccionRegla = "ignorar"
	ReglaAsignar AccionRegla = "asignar"
	ReglaDividir AccionRegla = "dividir"
)

// Scalar canonical fields an import row can populate. Dynamic targets use the
// "usuario_externo." and "extra." prefixes.
var camposEscalares = map[string]bool{
	CampoDNI:          true,
	CampoNombre:       true,
	CampoApellido:     true,
	CampoFechaIngreso: true,
	CampoEstado:       true,
	CampoSkill:        true,
	CampoEsLider:      true,
	CampoEmail:        true,
	CampoTelefono:     true,
	CampoDireccion:    true,
	CampoArea:         true,
	CampoProyecto:     true,
}

const (
	PrefijoUsuarioExterno = "usuario_externo."
	PrefijoExtra          = "extra."
)

// EsCampoCanonico reports whether a mapping target names a canonical field.
func EsCampoCanonico(campo string) bool {
	if camposEscalares[campo] {
		return true
	}
	return esDinamicoValido(campo)
}

func esDinamicoValido(campo string) bool {
	for _, p := range []string{PrefijoUsuarioExterno, PrefijoExtra} {
		if strings.HasPrefix(campo, p) && len(campo) > len(p) {
			return true
		}
	}
	return false
}

// Regla maps one source column to its canonical destination. Exactly one of
// the three actions applies: ignore the column, assign it to a single field,
// or split the cell by a separator pattern into several fields positionally.
type Regla struct {
	Columna   string      `json:"columna"`
	Accion    AccionRegla `json:"accion"`
	Campo     string      `json:"campo,omitempty"`
	Separador string      `json:"separador,omitempty"`
	Campos    []string    `json:"campos,omitempty"`
}

// EspecificacionMapeo is the request-scoped mapping specification for one
// import batch. Rules apply in order: when two rules target the same
// canonical field, the last one wins.
type EspecificacionMapeo struct {
	Reglas []Regla `json:"reglas"`
}

// Tabla is the raw tabular input: a header of arbitrary source column names
// and one slice of cells per row.
type Tabla struct {
	Columnas []string
	Filas    [][]string
}

// FilaCanonica is one mapped row, keyed by canonical field name. A key that
// is absent was never mapped; a key holding "" was mapped from a blank cell.
type FilaCanonica map[string]string

// FilaMapeada pairs a canonical row with its 1-based position among the
// source data rows, so row-level errors keep naming the file row even after
// the mapper dropped earlier rows.
type FilaMapeada struct {
	Numero  int          `json:"numero"`
	Valores FilaCanonica `json:"valores"`
}

// Validar rejects unusable specifications before any row is processed. An
// empty specification, an unknown action or target, a bad separator pattern,
// or a specification that never produces a dni all abort the batch.
func (m *EspecificacionMapeo) Validar() error {
	if m == nil || len(m.Reglas) == 0 {
		return ErrMapeoVacio
	}

	tieneDNI := false
	for i, r := range m.Reglas {
		if strings.TrimSpace(r.Columna) == "" {
			return fmt.Errorf("regla %d: %w", i, ErrColumnaVacia)
		}
		switch r.Accion {
		case ReglaIgnorar:
		case ReglaAsignar:
			if !EsCampoCanonico(r.Campo) {
				return fmt.Errorf("regla %d: campo %q: %w", i, r.Campo, ErrCampoDesconocido)
			}
			if r.Campo == CampoDNI {
				tieneDNI = true
			}
		case ReglaDividir:
			if r.Separador == "" {
				return fmt.Errorf("regla %d: %w", i, ErrSeparadorVacio)
			}
			if _, err := regexp.Compile(r.Separador); err != nil {
				return fmt.Errorf("regla %d: separador %q: %w", i, r.Separador, err)
			}
			if len(r.Campos) == 0 {
				return fmt.Errorf("regla %d: división sin campos destino", i)
			}
			for _, c := range r.Campos {
				if !EsCampoCanonico(c) {
					return fmt.Errorf("regla %d: campo %q: %w", i, c, ErrCampoDesconocido)
				}
				if c == CampoDNI {
					tieneDNI = true
				}
			}
		default:
			return fmt.Errorf("regla %d: acción %q desconocida", i, r.Accion)
		}
	}

	if !tieneDNI {
		return ErrMapeoSinDNI
	}

	return nil
}

// Aplicar maps the raw table to canonical rows, preserving input order.
// Source column names match case-insensitively. Rows whose mapped dni is
// absent or blank are dropped here and reported in the second return value;
// all remaining validation belongs to the reconciliation engine.
func (m *EspecificacionMapeo) Aplicar(t Tabla) ([]FilaMapeada, int, error) {
	if err := m.Validar(); err != nil {
		return nil, 0, err
	}

	idx := make(map[string]int, len(t.Columnas))
	for i, c := range t.Columnas {
		idx[strings.ToLower(strings.TrimSpace(c))] = i
	}

	// pre-compile split separators once per batch
	seps := make([]*regexp.Regexp, len(m.Reglas))
	for i, r := range m.Reglas {
		if r.Accion == ReglaDividir {
			seps[i] = regexp.MustCompile(r.Separador)
		}
	}

	var out []FilaMapeada
	omitidas := 0
	for n, fila := range t.Filas {
		canonica := FilaCanonica{}
		for i, r := range m.Reglas {
			col, ok := idx[strings.ToLower(strings.TrimSpace(r.Columna))]
			if !ok || col >= len(fila) {
				continue
			}
			celda := fila[col]

			switch r.Accion {
			case ReglaAsignar:
				canonica[r.Campo] = celda
			case ReglaDividir:
				partes := seps[i].Split(celda, len(r.Campos))
				for j, campo := range r.Campos {
					if j < len(partes) {
						canonica[campo] = strings.TrimSpace(partes[j])
					} else {
						canonica[campo] = ""
					}
				}
			}
		}

		if strings.TrimSpace(canonica[CampoDNI]) == "" {
			omitidas++
			continue
		}

		out = append(out, FilaMapeada{Numero: n + 1, Valores: canonica})
	}

	return out, omitidas, nil
}
