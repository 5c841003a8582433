package config

import "os"

// Config carries the environment-derived settings shared by the CLI and TUI.
type Config struct {
	// APIBase is the backend base URL, without a trailing slash.
	APIBase string
	// Token is the bearer token for first-class API calls. Calls are
	// short-circuited client-side when it is empty.
	Token string
}

// FromEnv builds a Config from environment variables. Callers are expected to
// have run godotenv.Load() beforehand so .env files are honored.
func FromEnv() Config {
	return Config{
		APIBase: GetEnvOrDefault("TALKLENS_API_URL", "http://localhost:8080/api"),
		Token:   os.Getenv("TALKLENS_TOKEN"),
	}
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
