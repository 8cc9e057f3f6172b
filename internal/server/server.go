package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/briankw/theo/internal/chatbot"
	"github.com/briankw/theo/internal/config"
	"github.com/briankw/theo/internal/memory"
)

// Server is the theo HTTP API server.
type Server struct {
	cfg          *config.Config
	http         *http.Server
	bot          *chatbot.Chatbot
	turnlog      *memory.TurnLog
	summaries    *memory.SummaryStore
	consolidator *memory.Consolidator
}

// New creates a new Server.
func New(cfg *config.Config, bot *chatbot.Chatbot, turnlog *memory.TurnLog, summaries *memory.SummaryStore, consolidator *memory.Consolidator) *Server {
	s := &Server{
		cfg:          cfg,
		bot:          bot,
		turnlog:      turnlog,
		summaries:    summaries,
		consolidator: consolidator,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: withLogging(withCORS(mux)),
	}

	return s
}

// Start starts the server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.Printf("Theo server listening on %s", s.http.Addr)
	log.Printf("Data dir: %s", s.cfg.DataDir)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
