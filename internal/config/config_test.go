package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "RATE_LIMIT_PER_MIN", "SESSION_TTL", "TAX_RATE", "CHECKOUT_MAX_ATTEMPTS", "CHECKOUT_BACKOFF"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "5000" || cfg.DBDSN != "storelaunch.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CheckoutMaxAttempts != 3 || cfg.CheckoutBackoff != 50*time.Millisecond {
		t.Fatalf("checkout defaults: %d %s", cfg.CheckoutMaxAttempts, cfg.CheckoutBackoff)
	}
	if !cfg.TaxRate.IsZero() {
		t.Fatalf("tax rate: %s", cfg.TaxRate)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TAX_RATE", "0.15")
	t.Setenv("CHECKOUT_MAX_ATTEMPTS", "5")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("RATE_LIMIT_PER_MIN", "not-a-number")
	cfg := Load()
	if cfg.Port != "8080" || cfg.CheckoutMaxAttempts != 5 || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.TaxRate.StringFixed(2) != "0.15" {
		t.Fatalf("tax rate: %s", cfg.TaxRate)
	}
	if cfg.RateLimitPerMin != 300 {
		t.Fatalf("bad value should fall back, got %d", cfg.RateLimitPerMin)
	}
}
