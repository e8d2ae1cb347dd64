package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")

	// Storage
	t.Setenv("STORE_DRIVER", "SQLITE") // lowercased
	t.Setenv("DB_PATH", "chat.db")

	// Upstream
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "https://api.openai.com/v1")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TIMEOUT", "10s")

	// Rate limiting (invalid values fall back to defaults)
	t.Setenv("RATE_WINDOW", "nope") // -> default 1m
	t.Setenv("RATE_MAX", "x")       // -> default 20

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ReadTimeout != 2*time.Second || cfg.WriteTimeout != 3*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.MaxHeaderBytes != 8192 {
		t.Errorf("MaxHeaderBytes = %d", cfg.MaxHeaderBytes)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want normalized release", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want normalized warn", cfg.LogLevel)
	}
	if !cfg.LogPretty {
		t.Errorf("LogPretty should parse 'yes' as true")
	}
	if cfg.StoreDriver != "sqlite" || cfg.DBPath != "chat.db" {
		t.Errorf("storage = %q / %q", cfg.StoreDriver, cfg.DBPath)
	}
	if cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Timeout != 10*time.Second {
		t.Errorf("openai = %+v", cfg.OpenAI)
	}
	if cfg.RateWindow != time.Minute {
		t.Errorf("RateWindow = %v, want default on bad input", cfg.RateWindow)
	}
	if cfg.RateMax != 20 {
		t.Errorf("RateMax = %d, want default on bad input", cfg.RateMax)
	}
	wantOrigins := []string{"https://a.com", "http://b"}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, wantOrigins) {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Errorf("security = %+v", cfg.Security)
	}
}

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	for _, k := range []string{
		"PORT", "GIN_MODE", "LOG_LEVEL", "STORE_DRIVER", "DB_PATH",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_TIMEOUT",
		"RATE_WINDOW", "RATE_MAX", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
	// Ports and the rest fall back when the variable is empty
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.OpenAI.APIKey != "" {
		t.Errorf("APIKey should default empty, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.OpenAI.Model)
	}
	if cfg.RateWindow != time.Minute || cfg.RateMax != 20 {
		t.Errorf("rate = %v / %d", cfg.RateWindow, cfg.RateMax)
	}
	if len(cfg.CORS.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want empty", cfg.CORS.AllowedOrigins)
	}
}

// --- validation failures ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantSub string
	}{
		{"bad store driver", "STORE_DRIVER", "postgres", "STORE_DRIVER"},
		{"blank port", "PORT", "   ", "PORT"},
		{"blank model", "OPENAI_MODEL", "   ", "OPENAI_MODEL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load should fail for %s=%q", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %s", err, tc.wantSub)
			}
		})
	}
}

func TestLoad_SQLiteRequiresDBPath(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "   ")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail when STORE_DRIVER=sqlite and DB_PATH is blank")
	}
}
