package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository"
)

const empleadoCols = `id, dni, nombre, apellido, fecha_ingreso, estado, skill, es_lider, email, telefono, direccion, area, proyecto, usuarios_externos, extras, creado, actualizado`

func (r *SQLiteRepo) CreateEmpleado(ctx context.Context, e *models.Empleado) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("empleado is nil")
	}
	if e.Estado == "" {
		e.Estado = models.EstadoActivo
	}

	externos, extras, err := encodeMapas(e)
	if err != nil {
		return 0, err
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO empleados (dni, nombre, apellido, fecha_ingreso, estado, skill, es_lider, email, telefono, direccion, area, proyecto, usuarios_externos, extras, creado, actualizado)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.DNI, e.Nombre, e.Apellido, e.FechaIngreso, e.Estado, e.Skill, boolToInt(e.EsLider),
		e.Email, e.Telefono, e.Direccion, e.Area, e.Proyecto, externos, extras, ts, ts)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: empleados.dni") {
			return 0, repository.ErrDNIDuplicado
		}

		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetEmpleadoByDNI(ctx context.Context, dni string) (*models.Empleado, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+empleadoCols+` FROM empleados WHERE dni = ?`, dni)
	e, err := scanEmpleado(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return e, nil
}

// UpdateEmpleado persists every mutable field of the record. The DNI is part
// of the WHERE clause only and is never reassigned.
func (r *SQLiteRepo) UpdateEmpleado(ctx context.Context, e *models.Empleado) error {
	if e == nil {
		return fmt.Errorf("empleado is nil")
	}

	externos, extras, err := encodeMapas(e)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, `UPDATE empleados SET nombre = ?, apellido = ?, fecha_ingreso = ?, estado = ?, skill = ?, es_lider = ?, email = ?, telefono = ?, direccion = ?, area = ?, proyecto = ?, usuarios_externos = ?, extras = ?, actualizado = ? WHERE dni = ?`,
		e.Nombre, e.Apellido, e.FechaIngreso, e.Estado, e.Skill, boolToInt(e.EsLider),
		e.Email, e.Telefono, e.Direccion, e.Area, e.Proyecto, externos, extras, now(), e.DNI)
	return err
}

func (r *SQLiteRepo) DeleteEmpleado(ctx context.Context, dni string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM empleados WHERE dni = ?`, dni)
	return err
}

func (r *SQLiteRepo) ListEmpleados(ctx context.Context, f repository.FiltroEmpleados, limit, offset int) ([]models.Empleado, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where, args := filtroEmpleadosSQL(f)
	args = append(args, limit, offset)

	rows, err := r.conn.QueryRows(ctx, `SELECT `+empleadoCols+` FROM empleados`+where+` ORDER BY apellido, nombre LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Empleado
	for rows.Next() {
		e, err := scanEmpleado(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *e)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountEmpleados(ctx context.Context, f repository.FiltroEmpleados) (int64, error) {
	where, args := filtroEmpleadosSQL(f)
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM empleados`+where, args...)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) ResumenEmpleados(ctx context.Context) (*repository.ResumenEmpleados, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN estado = 'activo' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(es_lider), 0),
		COUNT(DISTINCT CASE WHEN skill != '' THEN skill END)
		FROM empleados`)

	var res repository.ResumenEmpleados
	if err := row.Scan(&res.Total, &res.Activos, &res.Lideres, &res.SkillsUnicos); err != nil {
		return nil, err
	}

	return &res, nil
}

func filtroEmpleadosSQL(f repository.FiltroEmpleados) (string, []any) {
	var conds []string
	var args []any

	if f.DNI != "" {
		conds = append(conds, "dni = ?")
		args = append(args, f.DNI)
	}
	for _, c := range []struct{ col, val string }{
		{"nombre", f.Nombre},
		{"apellido", f.Apellido},
		{"skill", f.Skill},
	} {
		if c.val != "" {
			conds = append(conds, c.col+" LIKE ?")
			args = append(args, "%"+c.val+"%")
		}
	}
	if f.Estado != "" {
		conds = append(conds, "estado = ?")
		args = append(args, f.Estado)
	}
	if f.EsLider != nil {
		conds = append(conds, "es_lider = ?")
		args = append(args, boolToInt(*f.EsLider))
	}
	if f.FechaDesde > 0 {
		conds = append(conds, "fecha_ingreso >= ?")
		args = append(args, f.FechaDesde)
	}
	if f.FechaHasta > 0 {
		conds = append(conds, "fecha_ingreso <= ?")
		args = append(args, f.FechaHasta)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEmpleado(scan func(dest ...any) error) (*models.Empleado, error) {
	var e models.Empleado
	var esLider int
	var externos, extras string
	if err := scan(&e.ID, &e.DNI, &e.Nombre, &e.Apellido, &e.FechaIngreso, &e.Estado, &e.Skill, &esLider,
		&e.Email, &e.Telefono, &e.Direccion, &e.Area, &e.Proyecto, &externos, &extras, &e.Creado, &e.Actualizado); err != nil {
		return nil, err
	}

	e.EsLider = esLider != 0
	if err := decodeMapa(externos, &e.UsuariosExternos); err != nil {
		return nil, fmt.Errorf("decode usuarios_externos: %w", err)
	}
	if err := decodeMapa(extras, &e.Extras); err != nil {
		return nil, fmt.Errorf("decode extras: %w", err)
	}

	return &e, nil
}

func encodeMapas(e *models.Empleado) (string, string, error) {
	externos, err := encodeMapa(e.UsuariosExternos)
	if err != nil {
		return "", "", fmt.Errorf("encode usuarios_externos: %w", err)
	}
	extras, err := encodeMapa(e.Extras)
	if err != nil {
		return "", "", fmt.Errorf("encode extras: %w", err)
	}

	return externos, extras, nil
}

func encodeMapa(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMapa(s string, dst *map[string]string) error {
	if s == "" || s == "{}" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
