package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mauroere/padron/api"
	"github.com/mauroere/padron/internal/models"
	"github.com/mauroere/padron/pkg/repository/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		rol        string
		prepare    func(m *mock.Mocks)
		wantStatus int
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "Signin_InvalidRequest",
			method:     http.MethodPost,
			path:       "/signin",
			body:       "not a json",
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:       "Signin_MissingFields_Usuario",
			method:     http.MethodPost,
			path:       "/signin",
			body:       map[string]string{"password": "nop"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:       "Signin_MissingFields_Password",
			method:     http.MethodPost,
			path:       "/signin",
			body:       map[string]string{"usuario": "nadie"},
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:   "Signin_MissingUser",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"usuario": "nadie", "password": "nop"},
			prepare: func(m *mock.Mocks) {
				m.UsuRepo.Stored = nil
			},
			wantStatus: http.StatusUnauthorized,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:   "Signin_Success",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"usuario": "beto", "password": "hunter2"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
				m.UsuRepo.Stored = &models.Usuario{ID: 2, Usuario: "beto", HashPassword: string(hash), Rol: models.RolUsuario}
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				if ar.Token == "" {
					t.Fatalf("empty token")
				}
				tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				claims, ok := tok.Claims.(jwt.MapClaims)
				if !ok {
					t.Fatalf("unexpected claims type")
				}
				if claims["usuario"] != "beto" || claims["rol"] != models.RolUsuario {
					t.Fatalf("unexpected claims: %#v", claims)
				}
				if expF, ok := claims["exp"].(float64); !ok || int64(expF) < time.Now().Unix() {
					t.Fatalf("invalid exp claim")
				}
			},
		},
		{
			name:   "Signin_WrongPassword",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"usuario": "carla", "password": "wrongpw"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("rightpw"), bcrypt.DefaultCost)
				m.UsuRepo.Stored = &models.Usuario{ID: 3, Usuario: "carla", HashPassword: string(hash)}
			},
			wantStatus: http.StatusUnauthorized,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:       "Signout_OK",
			method:     http.MethodPost,
			path:       "/signout",
			body:       nil,
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("signed out")) {
					t.Fatalf("unexpected body: %s", string(b))
				}
			},
		},
		{
			name:       "CreateUsuario_NotAdmin",
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       map[string]string{"usuario": "nuevo", "password": "pw"},
			rol:        models.RolUsuario,
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusForbidden,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:       "CreateUsuario_MissingFields",
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       map[string]string{"usuario": "nuevo"},
			rol:        models.RolAdmin,
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:       "CreateUsuario_InvalidRol",
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       map[string]string{"usuario": "nuevo", "password": "pw", "rol": "superjefe"},
			rol:        models.RolAdmin,
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusBadRequest,
			checkBody:  func(t *testing.T, b []byte) {},
		},
		{
			name:       "CreateUsuario_Success",
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       map[string]string{"usuario": "nuevo", "password": "pw"},
			rol:        models.RolAdmin,
			prepare:    func(m *mock.Mocks) {},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, b []byte) {
				var resp struct {
					ID      int64  `json:"id"`
					Usuario string `json:"usuario"`
					Rol     string `json:"rol"`
				}
				if err := json.Unmarshal(b, &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if resp.ID == 0 || resp.Usuario != "nuevo" || resp.Rol != models.RolUsuario {
					t.Fatalf("unexpected response: %+v", resp)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			if tt.prepare != nil {
				tt.prepare(mocks)
			}
			handler := api.NewAuthHandler(mocks.UsuRepo, secret, tokenDur)

			var bodyReader io.Reader
			if tt.body != nil {
				b, _ := json.Marshal(tt.body)
				bodyReader = bytes.NewReader(b)
			}
			req := httptest.NewRequest(tt.method, tt.path, bodyReader)
			if tt.rol != "" {
				req = req.WithContext(context.WithValue(req.Context(), api.CtxRol, tt.rol))
			}
			w := httptest.NewRecorder()

			switch tt.path {
			case "/signin":
				handler.Signin(w, req)
			case "/signout":
				handler.Signout(w, req)
			case "/usuarios":
				handler.CreateUsuario(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.checkBody != nil {
				tt.checkBody(t, data)
			}
		})
	}

	// the stored hash must not be the plain password
	t.Run("CreateUsuario_HashesPassword", func(t *testing.T) {
		mocks := mock.NewMocks()
		handler := api.NewAuthHandler(mocks.UsuRepo, secret, tokenDur)

		b, _ := json.Marshal(map[string]string{"usuario": "ana", "password": "claveclara"})
		req := httptest.NewRequest(http.MethodPost, "/usuarios", bytes.NewReader(b))
		req = req.WithContext(context.WithValue(req.Context(), api.CtxRol, models.RolAdmin))
		w := httptest.NewRecorder()
		handler.CreateUsuario(w, req)

		if w.Result().StatusCode != http.StatusCreated {
			t.Fatalf("expected 201 got %d", w.Result().StatusCode)
		}
		stored := mocks.UsuRepo.Stored
		if stored == nil || stored.HashPassword == "claveclara" {
			t.Fatalf("password stored in the clear: %#v", stored)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(stored.HashPassword), []byte("claveclara")); err != nil {
			t.Fatalf("stored hash does not verify: %v", err)
		}
	})
}
