package chat

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// persistLoop mirrors a room's content into the store at a bounded rate.
// Every tick it samples (value, version) and writes only when the version
// advanced past the last successful write, so a burst of updates collapses
// into one upsert and a failed write is retried on the next tick. The room
// lock is held only for the instant of the sample, never across the write.
//
// The loop runs for the life of the process; registry ctx cancellation stops
// it. Rooms removed from the registry keep their loop until shutdown, which
// is harmless: their content no longer changes, so nothing is written.
func (reg *Registry) persistLoop(room *Room) {
	tk := time.NewTicker(reg.persistEvery)
	defer tk.Stop()

	// Rooms start at version 0, including rooms restored from the store
	// (restoreContent does not bump the version), so the first SetContent is
	// never missed even if it lands before this goroutine first runs.
	var lastWritten uint64
	for {
		select {
		case <-reg.ctx.Done():
			return
		case <-tk.C:
			value, version := room.Content()
			if version == lastWritten {
				continue
			}

			ctx, cancel := context.WithTimeout(reg.ctx, reg.persistEvery)
			err := reg.store.Upsert(ctx, room.ID(), value)
			cancel()
			if err != nil {
				zap.L().Error("persist_upsert", zap.String("room", room.ID()), zap.Error(err))
				continue
			}
			lastWritten = version
		}
	}
}
