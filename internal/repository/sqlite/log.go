package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository"
)

func (r *SQLiteRepo) AppendLog(ctx context.Context, l *models.LogCambio) (int64, error) {
	if l == nil {
		return 0, fmt.Errorf("log entry is nil")
	}

	ts := l.Timestamp
	if ts == 0 {
		ts = now()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO log_cambios (timestamp, usuario_id, empleado_dni, accion, detalle) VALUES (?, ?, ?, ?, ?)`,
		ts, l.UsuarioID, l.EmpleadoDNI, l.Accion, l.Detalle)
	if err != nil {
		return 0, err
	}

	l.Timestamp = ts
	return res.LastInsertId()
}

func (r *SQLiteRepo) ListLog(ctx context.Context, f repository.FiltroLog, limit, offset int) ([]models.LogCambio, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var conds []string
	var args []any
	if f.UsuarioID > 0 {
		conds = append(conds, "usuario_id = ?")
		args = append(args, f.UsuarioID)
	}
	if f.EmpleadoDNI != "" {
		conds = append(conds, "empleado_dni = ?")
		args = append(args, f.EmpleadoDNI)
	}
	if f.Accion != "" {
		conds = append(conds, "accion = ?")
		args = append(args, f.Accion)
	}
	if f.Desde > 0 {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.Desde)
	}
	if f.Hasta > 0 {
		conds = append(conds, "timestamp <= ?")
		args = append(args, f.Hasta)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)

	rows, err := r.conn.QueryRows(ctx, `SELECT id, timestamp, usuario_id, empleado_dni, accion, detalle FROM log_cambios`+where+` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LogCambio
	for rows.Next() {
		var l models.LogCambio
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.UsuarioID, &l.EmpleadoDNI, &l.Accion, &l.Detalle); err != nil {
			return nil, err
		}

		out = append(out, l)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountLogByDNI(ctx context.Context, dni string) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM log_cambios WHERE empleado_dni = ?`, dni)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
