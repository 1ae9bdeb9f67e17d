package sqlite

import (
	"os"
	"time"

	"log/slog"

	"github.com/mauroere/padron/internal/db"
	"github.com/mauroere/padron/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UsuarioRepo = (*SQLiteRepo)(nil)
var _ repository.EmpleadoRepo = (*SQLiteRepo)(nil)
var _ repository.LogRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
