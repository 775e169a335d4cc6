package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARTFORGE_SECURITY_JWTACCESSSECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gallery.MaxImagesPerUser != 20 {
		t.Errorf("MaxImagesPerUser = %d, want 20", cfg.Gallery.MaxImagesPerUser)
	}
	if cfg.Gallery.PromptMinLength != 3 || cfg.Gallery.PromptMaxLength != 500 {
		t.Errorf("prompt bounds = %d..%d, want 3..500", cfg.Gallery.PromptMinLength, cfg.Gallery.PromptMaxLength)
	}
	if cfg.Generation.Width != 800 || cfg.Generation.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", cfg.Generation.Width, cfg.Generation.Height)
	}
	if cfg.Generation.Timeout != 60*time.Second {
		t.Errorf("Timeout = %s, want 60s", cfg.Generation.Timeout)
	}
	if cfg.HTTP.WriteTimeout <= cfg.Generation.Timeout {
		t.Errorf("WriteTimeout %s should exceed generation timeout %s", cfg.HTTP.WriteTimeout, cfg.Generation.Timeout)
	}
	if cfg.Storage.Driver != "local" {
		t.Errorf("Storage.Driver = %q, want local", cfg.Storage.Driver)
	}
	if cfg.Worker.OrphanGrace != 10*time.Minute {
		t.Errorf("OrphanGrace = %s, want 10m", cfg.Worker.OrphanGrace)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ARTFORGE_SECURITY_JWTACCESSSECRET", "test-secret")
	t.Setenv("ARTFORGE_GALLERY_MAXIMAGESPERUSER", "5")
	t.Setenv("ARTFORGE_GENERATION_TIMEOUT", "15s")
	t.Setenv("ARTFORGE_ALLOWCORSORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gallery.MaxImagesPerUser != 5 {
		t.Errorf("MaxImagesPerUser = %d, want 5", cfg.Gallery.MaxImagesPerUser)
	}
	if cfg.Generation.Timeout != 15*time.Second {
		t.Errorf("Timeout = %s, want 15s", cfg.Generation.Timeout)
	}
	if len(cfg.AllowCORSOrigins) != 2 {
		t.Errorf("AllowCORSOrigins = %v, want two entries", cfg.AllowCORSOrigins)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"bad driver", map[string]string{"ARTFORGE_SECURITY_JWTACCESSSECRET": "x", "ARTFORGE_STORAGE_DRIVER": "ftp"}},
		{"inverted bounds", map[string]string{"ARTFORGE_SECURITY_JWTACCESSSECRET": "x", "ARTFORGE_GALLERY_PROMPTMAXLENGTH": "2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ARTFORGE_SECURITY_JWTACCESSSECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() expected error")
			}
		})
	}
}
