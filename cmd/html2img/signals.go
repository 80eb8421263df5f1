package main

import (
	"context"
	"os/signal"
)

// notifyContext returns a context canceled by the first shutdown signal.
// A second signal is left to the runtime and kills the process.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(parent, shutdownSignals...)
	go func() {
		<-ctx.Done()
		signal.Reset(shutdownSignals...)
	}()
	return ctx, cancel
}
