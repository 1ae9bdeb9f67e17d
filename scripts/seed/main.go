package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit"
	dbfs "github.com/mauroere/padron/db"
	"github.com/mauroere/padron/internal/config"
	"github.com/mauroere/padron/internal/db"
	"github.com/mauroere/padron/internal/importer"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/internal/repository/sqlite"
	"golang.org/x/crypto/bcrypt"
)

const cantidadEmpleados = 20

var skills = []string{"Go", "Python", "Java", "SQL", "React", "DevOps", "QA", "Data"}

// Seeds the database with fake employees for local development.
func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	conn, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migrate error: %v\n", err)
		os.Exit(1)
	}

	repo := sqlite.New(conn, nil)

	// log entries reference a usuario, so make sure the bootstrap admin exists
	admin, err := repo.GetUsuarioByNombre(ctx, cfg.AdminUsuario)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Usuario error: %v\n", err)
		os.Exit(1)
	}
	if admin == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Hash error: %v\n", err)
			os.Exit(1)
		}
		id, err := repo.CreateUsuario(ctx, &models.Usuario{Usuario: cfg.AdminUsuario, HashPassword: string(hash), Rol: models.RolAdmin})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Usuario error: %v\n", err)
			os.Exit(1)
		}
		admin = &models.Usuario{ID: id}
	}

	gofakeit.Seed(time.Now().UnixNano())

	creados := 0
	for i := 0; i < cantidadEmpleados; i++ {
		ingreso := gofakeit.DateRange(time.Now().AddDate(-5, 0, 0), time.Now())

		e := &models.Empleado{
			DNI:          fmt.Sprintf("%d", gofakeit.Number(1000000, 99999999)),
			Nombre:       gofakeit.FirstName(),
			Apellido:     gofakeit.LastName(),
			FechaIngreso: importer.DiaMilis(ingreso.UnixMilli()),
			Estado:       models.EstadoActivo,
			Skill:        skills[gofakeit.Number(0, len(skills)-1)],
			EsLider:      gofakeit.Bool(),
			Email:        gofakeit.Email(),
			Telefono:     gofakeit.Phone(),
		}
		if gofakeit.Number(0, 9) == 0 {
			e.Estado = models.EstadoInactivo
		}

		if _, err := repo.CreateEmpleado(ctx, e); err != nil {
			// collisions on the random DNI are fine for a seed run
			continue
		}
		creados++

		_, err = repo.AppendLog(ctx, &models.LogCambio{
			UsuarioID:   admin.ID,
			EmpleadoDNI: e.DNI,
			Accion:      models.AccionAlta,
			Detalle:     fmt.Sprintf("Alta de empleado: %s %s", e.Nombre, e.Apellido),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Log error: %v\n", err)
		}
	}

	fmt.Printf("Seeded %d empleados into %s\n", creados, cfg.DatabasePath)
}
