package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mauroere/padron/internal/models"
)

func (r *SQLiteRepo) CreateUsuario(ctx context.Context, u *models.Usuario) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("usuario is nil")
	}
	if u.Rol == "" {
		u.Rol = models.RolUsuario
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO usuarios (usuario, hash_password, rol, creado) VALUES (?, ?, ?, ?)`, u.Usuario, u.HashPassword, u.Rol, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUsuarioByID(ctx context.Context, id int64) (*models.Usuario, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, usuario, hash_password, rol, creado FROM usuarios WHERE id = ?`, id)
	return scanUsuario(row)
}

func (r *SQLiteRepo) GetUsuarioByNombre(ctx context.Context, usuario string) (*models.Usuario, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, usuario, hash_password, rol, creado FROM usuarios WHERE usuario = ?`, usuario)
	return scanUsuario(row)
}

func scanUsuario(row *sql.Row) (*models.Usuario, error) {
	var u models.Usuario
	if err := row.Scan(&u.ID, &u.Usuario, &u.HashPassword, &u.Rol, &u.Creado); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}
