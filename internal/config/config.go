package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`

	// BorradoFisico controls the delete policy: when false (the default),
	// employees with change-log history are marked inactive instead of being
	// removed from the table.
	BorradoFisico bool `yaml:"borrado_fisico"`

	// Bootstrap admin credentials, created at startup when missing.
	AdminUsuario  string `yaml:"admin_usuario"`
	AdminPassword string `yaml:"admin_password"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	cfg := &Config{
		Addr:          getEnv("PADRON_ADDR", ":8080"),
		JWTSecret:     getEnv("PADRON_JWT_SECRET", "supersecretkey"),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("PADRON_DATABASE_PATH", "padron.db"),
		TokenDuration: tokenDuration,
		AdminUsuario:  getEnv("PADRON_ADMIN_USUARIO", "admin"),
		AdminPassword: getEnv("PADRON_ADMIN_PASSWORD", "admin123"),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		// durations arrive as strings ("30s", "2h"); yaml cannot decode those
		// into time.Duration directly
		var raw struct {
			Addr          string `yaml:"addr"`
			JWTSecret     string `yaml:"jwt_secret"`
			Timeout       string `yaml:"timeout"`
			DatabasePath  string `yaml:"database_path"`
			TokenDuration string `yaml:"token_duration"`
			BorradoFisico *bool  `yaml:"borrado_fisico"`
			AdminUsuario  string `yaml:"admin_usuario"`
			AdminPassword string `yaml:"admin_password"`
		}
		dec := yaml.NewDecoder(f)
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		if raw.Addr != "" {
			cfg.Addr = raw.Addr
		}
		if raw.JWTSecret != "" {
			cfg.JWTSecret = raw.JWTSecret
		}
		if raw.DatabasePath != "" {
			cfg.DatabasePath = raw.DatabasePath
		}
		if raw.AdminUsuario != "" {
			cfg.AdminUsuario = raw.AdminUsuario
		}
		if raw.AdminPassword != "" {
			cfg.AdminPassword = raw.AdminPassword
		}
		if raw.BorradoFisico != nil {
			cfg.BorradoFisico = *raw.BorradoFisico
		}
		if raw.Timeout != "" {
			d, err := time.ParseDuration(raw.Timeout)
			if err != nil {
				return nil, fmt.Errorf("timeout: %w", err)
			}
			cfg.APITimeout = d
		}
		if raw.TokenDuration != "" {
			d, err := time.ParseDuration(raw.TokenDuration)
			if err != nil {
				return nil, fmt.Errorf("token_duration: %w", err)
			}
			cfg.TokenDuration = d
		}
	}

	return cfg, nil
}

// Validate rejects configurations that are unsafe outside development.
func (c *Config) Validate() error {
	env := getEnv("PADRON_ENV", "development")
	if env != "development" && c.JWTSecret == "supersecretkey" {
		return fmt.Errorf("jwt_secret must be set in %s environment", env)
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
