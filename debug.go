package livemap

import (
	"time"

	"github.com/phanxgames/livemap/internal/logger"
)

// frameStats holds per-frame timing and workload counters.
// Only populated when debug mode is on.
type frameStats struct {
	updateTime       time.Duration
	commandCount     int
	tilesPending     int
	tilesRasterizing int
	unprojected      int
}

// debugLog logs the update stats of a frame.
func (m *Map) debugLog(stats frameStats) {
	if !m.debug {
		return
	}
	logger.L().Debug("frame_stats",
		"frame", m.scheduler.Frame(),
		"update", stats.updateTime,
		"commands", stats.commandCount,
		"tiles_pending", stats.tilesPending,
		"tiles_rasterizing", stats.tilesRasterizing,
		"unprojected", stats.unprojected,
	)
}

// debugLogDraw logs the submit time and draw calls of a frame.
func (m *Map) debugLogDraw(submit time.Duration, drawCalls int) {
	if !m.debug {
		return
	}
	logger.L().Debug("frame_draw",
		"frame", m.scheduler.Frame(),
		"submit", submit,
		"draw_calls", drawCalls,
	)
}
