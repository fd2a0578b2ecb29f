package config

import (
	"os"
	"testing"
)

func resetConfig(t *testing.T) {
	t.Helper()
	loaded = false
	cfg = AppConfig{}
	t.Cleanup(func() {
		loaded = false
		cfg = AppConfig{}
	})
}

// Load must not exit the process when the JWT secret is missing. The secret
// is enforced at boot through MustValidate, so lazy Get callers such as the
// Redis cache helpers stay safe to use anywhere.
func TestLoadWithoutJWTSecret(t *testing.T) {
	resetConfig(t)
	old, had := os.LookupEnv("JWT_SECRET")
	os.Unsetenv("JWT_SECRET")
	t.Cleanup(func() {
		if had {
			os.Setenv("JWT_SECRET", old)
		}
	})

	c := Load()
	if c.JWTSecret != "" {
		t.Errorf("JWTSecret = %q, want empty", c.JWTSecret)
	}
	if c.AppPort != "8080" {
		t.Errorf("AppPort = %q, want default 8080", c.AppPort)
	}
	if !loaded {
		t.Error("Load did not cache the configuration")
	}
}

func TestEnvOverridesApply(t *testing.T) {
	resetConfig(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9090")

	c := Load()
	if c.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q, want test-secret", c.JWTSecret)
	}
	if c.AppPort != "9090" {
		t.Errorf("AppPort = %q, want 9090", c.AppPort)
	}
}
