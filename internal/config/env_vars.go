package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	apiURLVar    = "CRM_API_URL"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetPort() string {
	return normalizePort(GetEnv(portEnvVar, "8080"))
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "CRM Dashboard")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIBaseURL returns the base URL of the remote CRM API, trailing slash
// included (e.g. "http://localhost:8000/api/")
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiURLVar, "http://localhost:8000/api/")
}

// GetSessionDir returns the directory holding the shared token record.
func (e EnvVars) GetSessionDir() string {
	if dir := os.Getenv("SESSION_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(e.GetDataFolder(), "session")
}

// GetNATSURL returns the NATS server URL, or "" when cross-host notification
// is disabled.
func (EnvVars) GetNATSURL() string {
	return GetEnv("NATS_URL", "")
}

func (EnvVars) GetNATSSubject() string {
	return GetEnv("NATS_SUBJECT", "crmdash.session.changed")
}

func normalizePort(port string) string {
	if port != "" && !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
