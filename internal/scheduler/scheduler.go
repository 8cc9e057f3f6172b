package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/briankw/theo/internal/chatctx"
	"github.com/briankw/theo/internal/memory"
)

// Scheduler runs the periodic maintenance cycle: flush the session to the
// turn log, then consolidate yesterday's turns into memory. Errors are logged
// and retried on the next tick.
type Scheduler struct {
	session      *chatctx.Session
	consolidator *memory.Consolidator

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler.
func New(session *chatctx.Session, consolidator *memory.Consolidator) *Scheduler {
	return &Scheduler{session: session, consolidator: consolidator}
}

// Start launches the background loop. The first cycle runs immediately so a
// restart never leaves yesterday unconsolidated for a full interval.
func (s *Scheduler) Start(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.tick(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop halts the loop and performs a final flush so no turn is lost on
// shutdown.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.session.Flush(ctx); err != nil {
		log.Printf("[scheduler] final flush failed: %v", err)
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.session.Flush(ctx); err != nil {
		log.Printf("[scheduler] flush failed: %v", err)
	}
	if err := s.consolidator.BuildMemory(ctx); err != nil {
		log.Printf("[scheduler] consolidation failed: %v", err)
	}
}
