package repository

import (
	"context"

	"github.com/mauroere/padron/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UsuarioRepo interface {
	CreateUsuario(ctx context.Context, u *models.Usuario) (int64, error)
	GetUsuarioByID(ctx context.Context, id int64) (*models.Usuario, error)
	GetUsuarioByNombre(ctx context.Context, usuario string) (*models.Usuario, error)
}

// FiltroEmpleados holds the optional predicates of the employee listing.
// String fields other than DNI match by substring, DNI matches exactly.
type FiltroEmpleados struct {
	DNI        string
	Nombre     string
	Apellido   string
	Skill      string
	Estado     string
	EsLider    *bool
	FechaDesde int64
	FechaHasta int64
}

// ResumenEmpleados aggregates headline roster counts.
type ResumenEmpleados struct {
	Total        int64 `json:"total"`
	Activos      int64 `json:"activos"`
	Lideres      int64 `json:"lideres"`
	SkillsUnicos int64 `json:"skills_unicos"`
}

type EmpleadoRepo interface {
	CreateEmpleado(ctx context.Context, e *models.Empleado) (int64, error)
	GetEmpleadoByDNI(ctx context.Context, dni string) (*models.Empleado, error)
	UpdateEmpleado(ctx context.Context, e *models.Empleado) error
	DeleteEmpleado(ctx context.Context, dni string) error
	ListEmpleados(ctx context.Context, f FiltroEmpleados, limit, offset int) ([]models.Empleado, error)
	CountEmpleados(ctx context.Context, f FiltroEmpleados) (int64, error)
	ResumenEmpleados(ctx context.Context) (*ResumenEmpleados, error)
}

// FiltroLog holds the optional predicates of the change-log listing.
// Zero values mean "no constraint".
type FiltroLog struct {
	UsuarioID   int64
	EmpleadoDNI string
	Accion      string
	Desde       int64
	Hasta       int64
}

// LogRepo is append-only: entries are never mutated or deleted.
type LogRepo interface {
	AppendLog(ctx context.Context, l *models.LogCambio) (int64, error)
	ListLog(ctx context.Context, f FiltroLog, limit, offset int) ([]models.LogCambio, error)
	CountLogByDNI(ctx context.Context, dni string) (int64, error)
}
