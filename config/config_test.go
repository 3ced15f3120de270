package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/salon")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("OTP_TTL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.OTPTTL != 2*time.Minute {
		t.Fatalf("OTPTTL = %v", cfg.OTPTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.JWTTTL() != 24*time.Hour {
		t.Fatalf("JWTTTL = %v", cfg.JWTTTL())
	}
	if cfg.TwilioConfigured() || cfg.CloudinaryConfigured() {
		t.Fatal("optional integrations should be off without credentials")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/salon")
	t.Setenv("JWT_SECRET", "placeholder")
	os.Unsetenv("JWT_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}
