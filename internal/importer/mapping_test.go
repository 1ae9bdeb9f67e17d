package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mauroere/padron/internal/importer"
)

func TestEspecificacionMapeoValidar(t *testing.T) {
	tests := []struct {
		name    string
		mapeo   importer.EspecificacionMapeo
		wantErr error
	}{
		{
			name:    "Empty",
			mapeo:   importer.EspecificacionMapeo{},
			wantErr: importer.ErrMapeoVacio,
		},
		{
			name: "NoDNITarget",
			mapeo: importer.EspecificacionMapeo{Reglas: []importer.Regla{
				{Columna: "Nombre", Accion: importer.ReglaAsignar, Campo: "nombre"},
			}},
			wantErr: importer.ErrMapeoSinDNI,
		},
		{
			name: "UnknownField",
			mapeo: importer.EspecificacionMapeo{Reglas: []importer.Regla{
				{Columna: "Documento", Accion: importer.ReglaAsignar, Campo: "documento"},
			}},
			wantErr: importer.ErrCampoDesconocido,
		},
		{
			name: "BlankColumn",
			mapeo: importer.EspecificacionMapeo{Reglas: []importer.Regla{
				{Columna: "  ", Accion: importer.ReglaAsignar, Campo: "dni"},
			}},
			wantErr: importer.ErrColumnaVacia,
		},
		{
			name: "SplitWithoutSeparator",
			mapeo: importer.EspecificacionMapeo{Reglas: []importer.Regla{
				{Columna: "Documento", Accion: importer.ReglaAsignar, Campo: "dni"},
				{Columna: "Nombre Completo", Accion: importer.ReglaDividir, Campos: []string{"nombre", "apellido"}},
			}},
			wantErr: importer.ErrSeparadorVacio,
		},
		{
			name: "Valid",
			mapeo: importer.EspecificacionMapeo{Reglas: []importer.Regla{
				{Columna: "Documento", Accion: importer.ReglaAsignar, Campo: "dni"},
				{Columna: "Legajo", Accion: importer.ReglaIgnorar},
				{Columna: "Nombre Completo", Accion: importer.ReglaDividir, Separador: `\s+`, Campos: []string{"nombre", "apellido"}},
				{Columna: "Jira", Accion: importer.ReglaAsignar, Campo: "usuario_externo.jira"},
			}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapeo.Validar()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validar: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validar = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAplicarAsignaYDivide(t *testing.T) {
	mapeo := importer.EspecificacionMapeo{Reglas: []importer.Regla{
		{Columna: "Documento", Accion: importer.ReglaAsignar, Campo: "dni"},
		{Columna: "Nombre Completo", Accion: importer.ReglaDividir, Separador: `\s+`, Campos: []string{"nombre", "apellido"}},
		{Columna: "Legajo", Accion: importer.ReglaIgnorar},
		{Columna: "Fecha", Accion: importer.ReglaAsignar, Campo: "fecha_ingreso"},
	}}

	tabla := importer.Tabla{
		Columnas: []string{"documento", "NOMBRE COMPLETO", "Legajo", "Fecha"},
		Filas: [][]string{
			{"12345678", "Juan Perez", "L-1", "01/02/2020"},
			{"87654321", "Ana", "L-2", "02/02/2020"},
		},
	}

	filas, omitidas, err := mapeo.Aplicar(tabla)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if omitidas != 0 {
		t.Fatalf("expected 0 omitidas, got %d", omitidas)
	}
	if len(filas) != 2 {
		t.Fatalf("expected 2 filas, got %d", len(filas))
	}

	if filas[0].Valores["dni"] != "12345678" || filas[0].Valores["nombre"] != "Juan" || filas[0].Valores["apellido"] != "Perez" {
		t.Fatalf("unexpected fila 0: %#v", filas[0])
	}
	if _, ok := filas[0].Valores["legajo"]; ok {
		t.Fatalf("ignored column leaked into fila: %#v", filas[0])
	}

	// a split with fewer parts than targets fills the rest with blanks
	if filas[1].Valores["nombre"] != "Ana" || filas[1].Valores["apellido"] != "" {
		t.Fatalf("unexpected fila 1: %#v", filas[1])
	}
}

func TestAplicarOmiteFilasSinDNI(t *testing.T) {
	mapeo := importer.EspecificacionMapeo{Reglas: []importer.Regla{
		{Columna: "dni", Accion: importer.ReglaAsignar, Campo: "dni"},
		{Columna: "nombre", Accion: importer.ReglaAsignar, Campo: "nombre"},
	}}

	tabla := importer.Tabla{
		Columnas: []string{"dni", "nombre"},
		Filas: [][]string{
			{"12345678", "Juan"},
			{"", "SinDocumento"},
			{"   ", "Blanco"},
			{"87654321", "Ana"},
		},
	}

	filas, omitidas, err := mapeo.Aplicar(tabla)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if omitidas != 2 {
		t.Fatalf("expected 2 omitidas, got %d", omitidas)
	}
	if len(filas) != 2 {
		t.Fatalf("expected 2 filas, got %d", len(filas))
	}
	// input order preserved
	if filas[0].Valores["dni"] != "12345678" || filas[1].Valores["dni"] != "87654321" {
		t.Fatalf("order not preserved: %#v", filas)
	}
	// surviving rows keep their source row numbers despite the dropped ones
	if filas[0].Numero != 1 || filas[1].Numero != 4 {
		t.Fatalf("source row numbers lost: %d, %d", filas[0].Numero, filas[1].Numero)
	}
}

func TestAplicarUltimaReglaGana(t *testing.T) {
	// two rules targeting the same field: the later one wins
	mapeo := importer.EspecificacionMapeo{Reglas: []importer.Regla{
		{Columna: "dni", Accion: importer.ReglaAsignar, Campo: "dni"},
		{Columna: "skill_viejo", Accion: importer.ReglaAsignar, Campo: "skill"},
		{Columna: "skill_nuevo", Accion: importer.ReglaAsignar, Campo: "skill"},
	}}

	tabla := importer.Tabla{
		Columnas: []string{"dni", "skill_viejo", "skill_nuevo"},
		Filas:    [][]string{{"12345678", "Java", "Go"}},
	}

	filas, _, err := mapeo.Aplicar(tabla)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if filas[0].Valores["skill"] != "Go" {
		t.Fatalf("expected last rule to win, got %q", filas[0].Valores["skill"])
	}
}

func TestAplicarFilasCortas(t *testing.T) {
	// ragged rows: cells beyond the row length are simply not mapped
	mapeo := importer.EspecificacionMapeo{Reglas: []importer.Regla{
		{Columna: "dni", Accion: importer.ReglaAsignar, Campo: "dni"},
		{Columna: "skill", Accion: importer.ReglaAsignar, Campo: "skill"},
	}}

	tabla := importer.Tabla{
		Columnas: []string{"dni", "skill"},
		Filas:    [][]string{{"12345678"}},
	}

	filas, omitidas, err := mapeo.Aplicar(tabla)
	if err != nil {
		t.Fatalf("Aplicar: %v", err)
	}
	if omitidas != 0 || len(filas) != 1 {
		t.Fatalf("unexpected result: filas=%d omitidas=%d", len(filas), omitidas)
	}
	if _, ok := filas[0].Valores["skill"]; ok {
		t.Fatalf("missing cell should not be mapped: %#v", filas[0])
	}
}

func TestValidarEspecificacionJSON(t *testing.T) {
	ctx := context.Background()

	valido := `{"reglas":[{"columna":"Documento","accion":"asignar","campo":"dni"}]}`
	if err := importer.ValidarEspecificacionJSON(ctx, []byte(valido)); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	invalidos := []string{
		`{}`,
		`{"reglas":[]}`,
		`{"reglas":[{"accion":"asignar"}]}`,
		`{"reglas":[{"columna":"x","accion":"borrar"}]}`,
	}
	for _, payload := range invalidos {
		if err := importer.ValidarEspecificacionJSON(ctx, []byte(payload)); err == nil {
			t.Fatalf("expected error for payload %s", payload)
		}
	}
}
