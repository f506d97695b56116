package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file shape. Unset fields fall back to the
// environment.
type File struct {
	Server struct {
		Port    string `yaml:"port"`
		AppName string `yaml:"app_name"`
	} `yaml:"server"`
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	Session struct {
		Dir         string `yaml:"dir"`
		NATSURL     string `yaml:"nats_url"`
		NATSSubject string `yaml:"nats_subject"`
	} `yaml:"session"`
}

// LoadFile parses the YAML configuration at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &f, nil
}
