// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chat serves the natural-language query UI and its JSON API.
package chat

import (
	"context"
	_ "embed"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/finquery/finquery/agent"
	"github.com/finquery/finquery/llm"
)

//go:embed index.html
var indexHTML []byte

// Asker answers a single question given the conversation so far.
type Asker interface {
	Ask(ctx context.Context, history []llm.Message, question string) (*agent.Answer, error)
}

// AgentFactory builds an Asker for a new session. The API key arrives from
// the browser and lives only inside the returned agent.
type AgentFactory func(apiKey, model string) (Asker, error)

// Server is the chat HTTP server.
type Server struct {
	router   chi.Router
	sessions *haxmap.Map[string, *Session]
	newAgent AgentFactory
}

// NewServer builds a chat server whose sessions query the given database.
func NewServer(db agent.Querier) *Server {
	factory := func(apiKey, model string) (Asker, error) {
		client, err := llm.NewClient(apiKey, llm.WithModel(model))
		if err != nil {
			return nil, err
		}
		return agent.New(db, client), nil
	}
	return NewServerWithFactory(factory)
}

// NewServerWithFactory builds a server with a custom agent constructor.
func NewServerWithFactory(factory AgentFactory) *Server {
	s := &Server{
		sessions: haxmap.New[string, *Session](),
		newAgent: factory,
	}
	s.router = s.buildRouter()
	return s
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe runs the server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("chat server failed")
		}
	}()

	<-done
	log.Info().Msg("shutting down chat server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.handleNewSession)
		r.Post("/chat", s.handleChat)
		r.Get("/history/{id}", s.handleHistory)
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})

	return r
}

type sessionRequest struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model,omitempty"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	SQL    string `json:"sql,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	a, err := s.newAgent(req.APIKey, req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := newSession(a)
	s.sessions.Set(sess.ID.String(), sess)

	log.Info().Str("SessionID", sess.ID.String()).Msg("chat session started")
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	sess, ok := s.sessions.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	answer, err := sess.Ask(r.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Str("SessionID", req.SessionID).Msg("chat question failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: answer.Text, SQL: answer.SQL})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": sess.Turns()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
