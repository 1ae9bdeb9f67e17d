package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	usuarioRepo   repository.UsuarioRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UsuarioRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{usuarioRepo: ur, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signinRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

type createUsuarioRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
	Rol      string `json:"rol"`
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Usuario == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	u, err := h.usuarioRepo.GetUsuarioByNombre(ctx, req.Usuario)
	if err != nil || u == nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.HashPassword), []byte(req.Password)) != nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	// Issue JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"usuario_id": u.ID,
		"usuario":    u.Usuario,
		"rol":        u.Rol,
		"exp":        time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}

// CreateUsuario registers a new system user. Admin only.
func (h *AuthHandler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	if !esAdmin(r) {
		http.Error(w, "Admin role required", http.StatusForbidden)
		return
	}

	var req createUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Usuario = strings.TrimSpace(req.Usuario)
	if req.Usuario == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if req.Rol == "" {
		req.Rol = models.RolUsuario
	}
	if req.Rol != models.RolAdmin && req.Rol != models.RolUsuario {
		http.Error(w, "Invalid rol", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	u := &models.Usuario{Usuario: req.Usuario, HashPassword: string(hash), Rol: req.Rol}
	id, err := h.usuarioRepo.CreateUsuario(r.Context(), u)
	if err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "usuario": u.Usuario, "rol": u.Rol}, http.StatusCreated)
}
