package main

import (
	"context"
	"errors"
	"time"

	"github.com/kickbu2towski/breakout-api/internal/data"
	"go.uber.org/zap"
)

// runCleanup seeds the pool once at startup and then re-seeds it on the
// configured interval, clearing stuck allocations. The reset overwrites
// in-flight assignments; the model logs each overwritten room.
func (app *application) runCleanup() {
	app.initializePool(context.Background())

	if app.config.cleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		app.initializePool(context.Background())
	}
}

func (app *application) initializePool(ctx context.Context) {
	err := app.models.Rooms.InitializeRooms(ctx, app.config.categories, app.config.roomsPerCategory)
	switch {
	case errors.Is(err, data.ErrNotConfigured):
		app.logger.Warn("skipping pool initialization: store not configured")
	case err != nil:
		app.logger.Error("initializing rooms", zap.Error(err))
	default:
		app.hub.publish(RoomEvent{Type: EventPoolInitialized})
	}
}
