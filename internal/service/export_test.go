package service

import "context"

// ProcessEvents runs a single outbox polling pass.
func (w *OutboxWorker) ProcessEvents(ctx context.Context) {
	w.processEvents(ctx)
}
