package main

import (
	"context"
	"time"
)

// detachedContext is for work that outlives the request that spawned it.
func detachedContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// warmGeocodeCache resolves an address off the request path. Failures are
// logged and forgotten.
func (app *application) warmGeocodeCache(address string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := app.geocoder.Lookup(ctx, address); err != nil {
		app.logger.Warnw("geocode warmup failed", "error", err)
	}
}

func (app *application) pruneStalePushTokensDaily() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		prune := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			// Tokens untouched for 70 days are almost certainly dead installs.
			if err := app.store.PushTokens.PruneStale(ctx, 70*24*time.Hour); err != nil {
				app.logger.Errorf("Error pruning stale push tokens: %v", err)
			} else {
				app.logger.Infof("Pruned stale push tokens at %s", time.Now().Format(time.RFC1123))
			}
		}

		prune()
		for range ticker.C {
			prune()
		}
	}()
}
