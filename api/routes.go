package api

import (
	"github.com/gorilla/mux"
	"github.com/mauroere/padron/internal/config"
	"github.com/mauroere/padron/internal/db"
	"github.com/mauroere/padron/internal/repository/sqlite"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(db, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	empleadosHandler := NewEmpleadosHandler(repo, repo, cfg.BorradoFisico)
	importarHandler := NewImportarHandler(repo, repo)
	logHandler := NewLogHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// User administration
	apiV1.HandleFunc("/usuarios", authHandler.CreateUsuario).Methods("POST")

	// Employee endpoints
	apiV1.HandleFunc("/empleados", empleadosHandler.List).Methods("GET")
	apiV1.HandleFunc("/empleados", empleadosHandler.Create).Methods("POST")
	apiV1.HandleFunc("/empleados/resumen", empleadosHandler.Resumen).Methods("GET")
	apiV1.HandleFunc("/empleados/{dni}", empleadosHandler.Get).Methods("GET")
	apiV1.HandleFunc("/empleados/{dni}", empleadosHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/empleados/{dni}", empleadosHandler.Delete).Methods("DELETE")

	// Bulk import
	apiV1.HandleFunc("/importar", importarHandler.Importar).Methods("POST")

	// Change log
	apiV1.HandleFunc("/log", logHandler.List).Methods("GET")

	return r
}
