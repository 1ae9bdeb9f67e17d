package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mauroere/padron/api"
	dbfs "github.com/mauroere/padron/db"
	"github.com/mauroere/padron/internal/config"
	"github.com/mauroere/padron/internal/db"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/internal/repository/sqlite"
	"golang.org/x/crypto/bcrypt"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	log.Printf("Starting padron server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection and apply pending migrations
	conn, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}
	if err := ensureAdmin(ctx, conn, cfg); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, conn)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := conn.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}

// ensureAdmin creates the bootstrap admin user when it does not exist yet.
func ensureAdmin(ctx context.Context, conn *db.DB, cfg *config.Config) error {
	repo := sqlite.New(conn, nil)

	u, err := repo.GetUsuarioByNombre(ctx, cfg.AdminUsuario)
	if err != nil {
		return err
	}
	if u != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = repo.CreateUsuario(ctx, &models.Usuario{
		Usuario:      cfg.AdminUsuario,
		HashPassword: string(hash),
		Rol:          models.RolAdmin,
	})
	return err
}
