package service

import (
	"context"
	"log"
	"time"
)

// CleanupWorker periodically deletes used/expired verification codes and
// revoked/expired refresh tokens.  Not correctness-critical (claims and
// refreshes re-check expiry themselves) but without it both tables grow
// without bound.  Each sweep failure is logged and the next tick retries.
type CleanupWorker struct {
	codes    CodeStore
	tokens   TokenStore
	interval time.Duration
}

func NewCleanupWorker(codes CodeStore, tokens TokenStore, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{codes: codes, tokens: tokens, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs a single cleanup pass.  Exposed separately so tests and
// operators can trigger it directly.
func (w *CleanupWorker) Sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if n, err := w.codes.Cleanup(sweepCtx); err != nil {
		log.Printf("cleanup: verification codes sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("cleanup: removed %d verification codes", n)
	}
	if n, err := w.tokens.Cleanup(sweepCtx); err != nil {
		log.Printf("cleanup: refresh tokens sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("cleanup: removed %d refresh tokens", n)
	}
}
