package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_PATH", "HTTP_ADDR", "SETTLEMENT_CONFIRMATION_DELAY", "CORS_ALLOW_ORIGINS", "FORMANCE_STACK_URL", "LEDGER_CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "marketplace.db" {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("Expected default addr :5000, got %s", cfg.Server.Addr)
	}
	if cfg.Settlement.ConfirmationDelay != 3*time.Second {
		t.Errorf("Expected 3s confirmation delay, got %v", cfg.Settlement.ConfirmationDelay)
	}
	if len(cfg.Server.AllowOrigins) != 1 || cfg.Server.AllowOrigins[0] != "*" {
		t.Errorf("Expected wildcard origin, got %v", cfg.Server.AllowOrigins)
	}
	if cfg.Formance.Enabled() {
		t.Error("Expected Formance to be disabled without a stack URL")
	}
	if cfg.Formance.Currency != "ICP" {
		t.Errorf("Expected default currency ICP, got %s", cfg.Formance.Currency)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SETTLEMENT_CONFIRMATION_DELAY", "250ms")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("CREATE_DUMMY_USERS", "true")
	t.Setenv("LEDGER_CURRENCY", "USD")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settlement.ConfirmationDelay != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.Settlement.ConfirmationDelay)
	}
	if len(cfg.Server.AllowOrigins) != 2 || cfg.Server.AllowOrigins[1] != "http://b.test" {
		t.Errorf("Unexpected origins: %v", cfg.Server.AllowOrigins)
	}
	if !cfg.Database.CreateDummyUsers {
		t.Error("Expected CreateDummyUsers to be true")
	}
	if cfg.Formance.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", cfg.Formance.Currency)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SETTLEMENT_CONFIRMATION_DELAY", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid duration")
	}
}
