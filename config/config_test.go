package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TALKLENS_API_URL", "")
	t.Setenv("TALKLENS_TOKEN", "")

	cfg := FromEnv()
	if cfg.APIBase != "http://localhost:8080/api" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.Token != "" {
		t.Errorf("Token = %q", cfg.Token)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TALKLENS_API_URL", "https://api.example.com/api")
	t.Setenv("TALKLENS_TOKEN", "secret")

	cfg := FromEnv()
	if cfg.APIBase != "https://api.example.com/api" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.Token != "secret" {
		t.Errorf("Token = %q", cfg.Token)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TALKLENS_TEST_KEY", "")
	if got := GetEnvOrDefault("TALKLENS_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
	t.Setenv("TALKLENS_TEST_KEY", "set")
	if got := GetEnvOrDefault("TALKLENS_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("got %q", got)
	}
}
