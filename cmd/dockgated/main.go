package main

import (
	"log"
	"path/filepath"

	"github.com/dockgate/dockgate/internal/dockerapi"
	"github.com/dockgate/dockgate/internal/logger"
	"github.com/dockgate/dockgate/internal/registry"
	"github.com/dockgate/dockgate/internal/server"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Init(cfg.LogDir); err != nil {
		log.Fatalf("init file logging: %v", err)
	}
	defer logger.Close()

	// A registry that cannot be read or written is fatal: running on would
	// drop every mutation on the floor.
	reg, err := registry.Open(filepath.Join(cfg.DataDir, "config.json"), cfg.AdminPassword)
	if err != nil {
		log.Fatalf("open registry: %v", err)
	}

	engine := dockerapi.New(cfg.DockerHost)
	app := server.NewApp(reg, engine)

	logger.Info("dockgated listening on %s (engine %s)", cfg.Listen, cfg.DockerHost)
	srv := server.New(server.Config{ListenAddr: cfg.Listen}, app)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
