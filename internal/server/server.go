// Package server exposes the panel's JSON API and the session middleware
// in front of it.
package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
)

type Config struct {
	ListenAddr string
}

type Server struct {
	cfg Config
	h   http.Handler
}

func New(cfg Config, app *App) *Server {
	return &Server{
		cfg: cfg,
		h:   handlers.LoggingHandler(os.Stdout, app.Routes()),
	}
}

func (s *Server) ListenAndServe() error {
	httpSrv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.h,
		ReadHeaderTimeout: 10 * time.Second,
		// Stop waits for the engine's kill grace period, so the write
		// deadline stays generous.
		WriteTimeout: 60 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
