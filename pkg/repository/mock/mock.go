package mock

import (
	"context"
	"sort"
	"strings"

	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	UsuRepo *UsuarioRepo
	EmpRepo *EmpleadoRepo
	LogRepo *LogRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UsuRepo: &UsuarioRepo{},
		EmpRepo: &EmpleadoRepo{Empleados: map[string]*models.Empleado{}},
		LogRepo: &LogRepo{},
	}
}

type UsuarioRepo struct {
	Stored    *models.Usuario
	CreateErr error
}

func (m *UsuarioRepo) CreateUsuario(ctx context.Context, u *models.Usuario) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	c := *u
	c.ID = 1
	m.Stored = &c
	return 1, nil
}

func (m *UsuarioRepo) GetUsuarioByID(ctx context.Context, id int64) (*models.Usuario, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *UsuarioRepo) GetUsuarioByNombre(ctx context.Context, usuario string) (*models.Usuario, error) {
	if m.Stored != nil && m.Stored.Usuario == usuario {
		return m.Stored, nil
	}
	return nil, nil
}

// EmpleadoRepo keeps employees keyed by DNI. Reads return copies so a caller
// mutation only lands when UpdateEmpleado is called, mirroring the real repo.
type EmpleadoRepo struct {
	Empleados map[string]*models.Empleado
	nextID    int64

	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

func (m *EmpleadoRepo) CreateEmpleado(ctx context.Context, e *models.Empleado) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if _, ok := m.Empleados[e.DNI]; ok {
		return 0, repository.ErrDNIDuplicado
	}
	m.nextID++
	c := copia(e)
	c.ID = m.nextID
	if c.Estado == "" {
		c.Estado = models.EstadoActivo
	}
	m.Empleados[e.DNI] = c
	return c.ID, nil
}

func (m *EmpleadoRepo) GetEmpleadoByDNI(ctx context.Context, dni string) (*models.Empleado, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	e, ok := m.Empleados[dni]
	if !ok {
		return nil, nil
	}
	return copia(e), nil
}

func (m *EmpleadoRepo) UpdateEmpleado(ctx context.Context, e *models.Empleado) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Empleados[e.DNI] = copia(e)
	return nil
}

func (m *EmpleadoRepo) DeleteEmpleado(ctx context.Context, dni string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Empleados, dni)
	return nil
}

func (m *EmpleadoRepo) ListEmpleados(ctx context.Context, f repository.FiltroEmpleados, limit, offset int) ([]models.Empleado, error) {
	var out []models.Empleado
	for _, e := range m.Empleados {
		if !coincide(e, f) {
			continue
		}
		out = append(out, *copia(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Apellido != out[j].Apellido {
			return out[i].Apellido < out[j].Apellido
		}
		return out[i].Nombre < out[j].Nombre
	})
	return out, nil
}

func (m *EmpleadoRepo) CountEmpleados(ctx context.Context, f repository.FiltroEmpleados) (int64, error) {
	var n int64
	for _, e := range m.Empleados {
		if coincide(e, f) {
			n++
		}
	}
	return n, nil
}

func (m *EmpleadoRepo) ResumenEmpleados(ctx context.Context) (*repository.ResumenEmpleados, error) {
	res := &repository.ResumenEmpleados{}
	skills := map[string]bool{}
	for _, e := range m.Empleados {
		res.Total++
		if e.Estado == models.EstadoActivo {
			res.Activos++
		}
		if e.EsLider {
			res.Lideres++
		}
		if e.Skill != "" {
			skills[e.Skill] = true
		}
	}
	res.SkillsUnicos = int64(len(skills))
	return res, nil
}

func coincide(e *models.Empleado, f repository.FiltroEmpleados) bool {
	if f.DNI != "" && e.DNI != f.DNI {
		return false
	}
	if f.Nombre != "" && !strings.Contains(e.Nombre, f.Nombre) {
		return false
	}
	if f.Apellido != "" && !strings.Contains(e.Apellido, f.Apellido) {
		return false
	}
	if f.Skill != "" && !strings.Contains(e.Skill, f.Skill) {
		return false
	}
	if f.Estado != "" && e.Estado != f.Estado {
		return false
	}
	if f.EsLider != nil && e.EsLider != *f.EsLider {
		return false
	}
	if f.FechaDesde > 0 && e.FechaIngreso < f.FechaDesde {
		return false
	}
	if f.FechaHasta > 0 && e.FechaIngreso > f.FechaHasta {
		return false
	}
	return true
}

func copia(e *models.Empleado) *models.Empleado {
	c := *e
	if e.UsuariosExternos != nil {
		c.UsuariosExternos = make(map[string]string, len(e.UsuariosExternos))
		for k, v := range e.UsuariosExternos {
			c.UsuariosExternos[k] = v
		}
	}
	if e.Extras != nil {
		c.Extras = make(map[string]string, len(e.Extras))
		for k, v := range e.Extras {
			c.Extras[k] = v
		}
	}
	return &c
}

// LogRepo appends entries in memory, assigning ids and a monotonically
// increasing timestamp.
type LogRepo struct {
	Entradas  []models.LogCambio
	AppendErr error
	reloj     int64
}

func (m *LogRepo) AppendLog(ctx context.Context, l *models.LogCambio) (int64, error) {
	if m.AppendErr != nil {
		return 0, m.AppendErr
	}
	m.reloj++
	l.ID = int64(len(m.Entradas) + 1)
	if l.Timestamp == 0 {
		l.Timestamp = m.reloj
	}
	m.Entradas = append(m.Entradas, *l)
	return l.ID, nil
}

func (m *LogRepo) ListLog(ctx context.Context, f repository.FiltroLog, limit, offset int) ([]models.LogCambio, error) {
	var out []models.LogCambio
	for _, l := range m.Entradas {
		if f.UsuarioID > 0 && l.UsuarioID != f.UsuarioID {
			continue
		}
		if f.EmpleadoDNI != "" && l.EmpleadoDNI != f.EmpleadoDNI {
			continue
		}
		if f.Accion != "" && l.Accion != f.Accion {
			continue
		}
		if f.Desde > 0 && l.Timestamp < f.Desde {
			continue
		}
		if f.Hasta > 0 && l.Timestamp > f.Hasta {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *LogRepo) CountLogByDNI(ctx context.Context, dni string) (int64, error) {
	var n int64
	for _, l := range m.Entradas {
		if l.EmpleadoDNI == dni {
			n++
		}
	}
	return n, nil
}
