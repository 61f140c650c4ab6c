// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web exposes a read-only HTTP view of the most recent run, for
// the "serve" command: a cron-driven loop that re-runs the simulation and
// needs somewhere external to publish its latest report.Result.
package web

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dagu-org/dagsim/internal/logger"
	"github.com/dagu-org/dagsim/internal/report"
)

// Server serves the latest report.Result set via SetLatest.
type Server struct {
	router chi.Router
	log    logger.Logger

	mu     sync.RWMutex
	latest *report.Result
}

// NewServer returns a Server with its routes mounted.
func NewServer(log logger.Logger) *Server {
	if log == nil {
		log = logger.Default
	}
	s := &Server{log: log}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Get("/healthz", s.handleHealthz)
	r.Get("/api/v1/runs/latest", s.handleLatest)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetLatest replaces the result served at /api/v1/runs/latest.
func (s *Server) SetLatest(result *report.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	result := s.latest
	s.mu.RUnlock()

	if result == nil {
		http.Error(w, "no run has completed yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Errorf("web: encode latest run: %v", err)
	}
}
