package server

import (
	"log"
	"net/http"

	"github.com/briankw/theo/internal/server/handlers"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health
	mux.HandleFunc("GET /health", handlers.Health)

	// Chat
	chat := &handlers.ChatHandler{Bot: s.bot}
	mux.HandleFunc("POST /chat", chat.Chat)

	// Memory inspection and maintenance
	mem := &handlers.MemoryHandler{
		TurnLog:      s.turnlog,
		Store:        s.summaries,
		Consolidator: s.consolidator,
	}
	mux.HandleFunc("GET /v1/memory/summaries", mem.Summaries)
	mux.HandleFunc("GET /v1/memory/turns", mem.Turns)
	mux.HandleFunc("POST /v1/memory/consolidate", mem.Consolidate)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
