package tui

import (
	"fmt"

	"talklens/types"
)

// Status glyphs shared by the list and detail screens.
func statusGlyph(status types.Status) string {
	switch status {
	case types.StatusCompleted:
		return "✅"
	case types.StatusFailed:
		return "❌"
	case types.StatusProcessing:
		return "⏳"
	case types.StatusQueued:
		return "🕐"
	default:
		return "·"
	}
}

// formatClock renders seconds as M:SS or H:MM:SS.
func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// sparkBlocks maps an intensity in 0..100 to a bar character.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

func sparkline(values []float64) string {
	runes := make([]rune, len(values))
	for i, v := range values {
		idx := int(v / 100 * float64(len(sparkBlocks)))
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		runes[i] = sparkBlocks[idx]
	}
	return string(runes)
}

// truncate shortens a line to max runes, appending an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
