package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type config struct {
	Listen        string `yaml:"listen"`
	DataDir       string `yaml:"data_dir"`
	DockerHost    string `yaml:"docker_host"`
	AdminPassword string `yaml:"admin_password"`
	LogDir        string `yaml:"log_dir"`
}

// loadConfig layers defaults, an optional YAML file, then environment
// variables. The file is optional; everything can run off env vars alone.
func loadConfig() (config, error) {
	cfg := config{
		Listen:     ":3000",
		DataDir:    "/dockgate_data",
		DockerHost: "/var/run/docker.sock",
	}

	path := os.Getenv("DOCKGATE_CONFIG")
	if path == "" {
		path = "/etc/dockgate/dockgated.yaml"
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, err
	}

	if v := os.Getenv("DOCKGATE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("DOCKGATE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DOCKER_HOST"); v != "" {
		cfg.DockerHost = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("DOCKGATE_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin"
	}
	return cfg, nil
}
