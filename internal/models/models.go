package models

// Estado values accepted for an employee. Any other token is coerced to
// EstadoActivo by the importer's normalizer.
const (
	EstadoActivo   = "activo"
	EstadoInactivo = "inactivo"
)

// Acciones recorded in the change log.
const (
	AccionAlta         = "alta"
	AccionModificacion = "modificacion"
	AccionBaja         = "baja"
)

// Roles for system users.
const (
	RolAdmin   = "admin"
	RolUsuario = "usuario"
)

type Usuario struct {
	ID           int64  `json:"id" db:"id"`
	Usuario      string `json:"usuario" db:"usuario" validate:"required"`
	HashPassword string `json:"hash_password,omitempty" db:"hash_password"`
	Rol          string `json:"rol" db:"rol"`
	Creado       int64  `json:"creado" db:"creado"`
}

// Empleado is the managed roster entity. DNI is the natural key and is never
// reassigned once the record exists.
type Empleado struct {
	ID           int64  `json:"id" db:"id"`
	DNI          string `json:"dni" db:"dni" validate:"required"`
	Nombre       string `json:"nombre" db:"nombre" validate:"required"`
	Apellido     string `json:"apellido" db:"apellido" validate:"required"`
	FechaIngreso int64  `json:"fecha_ingreso" db:"fecha_ingreso"`
	Estado       string `json:"estado" db:"estado"`
	Skill        string `json:"skill,omitempty" db:"skill"`
	EsLider      bool   `json:"es_lider" db:"es_lider"`

	Email     string `json:"email,omitempty" db:"email"`
	Telefono  string `json:"telefono,omitempty" db:"telefono"`
	Direccion string `json:"direccion,omitempty" db:"direccion"`
	Area      string `json:"area,omitempty" db:"area"`
	Proyecto  string `json:"proyecto,omitempty" db:"proyecto"`

	// UsuariosExternos maps an external system name to the employee's username
	// on that system. Extras holds open-ended name/value custom fields. Both
	// are persisted as JSON text columns.
	UsuariosExternos map[string]string `json:"usuarios_externos,omitempty" db:"usuarios_externos"`
	Extras           map[string]string `json:"extras,omitempty" db:"extras"`

	Creado      int64 `json:"creado" db:"creado"`
	Actualizado int64 `json:"actualizado" db:"actualizado"`
}

// LogCambio is an immutable audit record: exactly one per employee-affecting
// operation that produced an actual effect.
type LogCambio struct {
	ID          int64  `json:"id" db:"id"`
	Timestamp   int64  `json:"timestamp" db:"timestamp"`
	UsuarioID   int64  `json:"usuario_id" db:"usuario_id"`
	EmpleadoDNI string `json:"empleado_dni" db:"empleado_dni"`
	Accion      string `json:"accion" db:"accion"`
	Detalle     string `json:"detalle" db:"detalle"`
}
