package infra

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BASE_URL", "")
	t.Setenv("GEMINI_API_KEYS", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StorageBaseURL != "http://localhost:8080/static" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
	if cfg.DirectorProvider != "openai" {
		t.Fatalf("DirectorProvider = %q", cfg.DirectorProvider)
	}
	if !cfg.PixelCorrection {
		t.Fatal("PixelCorrection should default to true")
	}
	if cfg.WorkerCount != 2 {
		t.Fatalf("WorkerCount = %d, want 2", cfg.WorkerCount)
	}
	if len(cfg.GeminiAPIKeys) != 0 {
		t.Fatalf("GeminiAPIKeys = %#v, want empty", cfg.GeminiAPIKeys)
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "1919")
	t.Setenv("STORAGE_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:1919/static" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
}

func TestLoadConfigSplitsGeminiKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GEMINI_API_KEYS", "key-a, key-b,,key-c")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"key-a", "key-b", "key-c"}
	if len(cfg.GeminiAPIKeys) != len(want) {
		t.Fatalf("GeminiAPIKeys = %#v, want %#v", cfg.GeminiAPIKeys, want)
	}
	for i := range want {
		if cfg.GeminiAPIKeys[i] != want[i] {
			t.Fatalf("GeminiAPIKeys[%d] = %q, want %q", i, cfg.GeminiAPIKeys[i], want[i])
		}
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}
