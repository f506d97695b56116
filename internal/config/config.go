package config

// Config is the composed configuration surface of the dashboard.
type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
}

// EnvConfig covers process-level settings.
type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

// APIConfig covers the remote CRM API.
type APIConfig interface {
	GetAPIBaseURL() string
}

// SessionConfig covers session storage and cross-instance notification.
type SessionConfig interface {
	GetSessionDir() string
	GetNATSURL() string
	GetNATSSubject() string
}

type mainConfig struct {
	EnvVars
	file *File
}

// New returns a configuration backed by environment variables alone.
func New() Config {
	return mainConfig{}
}

// Load returns a configuration where values set in the YAML file at path
// override the environment.
func Load(path string) (Config, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return mainConfig{file: file}, nil
}

func (c mainConfig) GetPort() string {
	if c.file != nil && c.file.Server.Port != "" {
		return normalizePort(c.file.Server.Port)
	}
	return c.EnvVars.GetPort()
}

func (c mainConfig) GetAppName() string {
	if c.file != nil && c.file.Server.AppName != "" {
		return c.file.Server.AppName
	}
	return c.EnvVars.GetAppName()
}

func (c mainConfig) GetAPIBaseURL() string {
	if c.file != nil && c.file.API.BaseURL != "" {
		return c.file.API.BaseURL
	}
	return c.EnvVars.GetAPIBaseURL()
}

func (c mainConfig) GetSessionDir() string {
	if c.file != nil && c.file.Session.Dir != "" {
		return c.file.Session.Dir
	}
	return c.EnvVars.GetSessionDir()
}

func (c mainConfig) GetNATSURL() string {
	if c.file != nil && c.file.Session.NATSURL != "" {
		return c.file.Session.NATSURL
	}
	return c.EnvVars.GetNATSURL()
}

func (c mainConfig) GetNATSSubject() string {
	if c.file != nil && c.file.Session.NATSSubject != "" {
		return c.file.Session.NATSSubject
	}
	return c.EnvVars.GetNATSSubject()
}
