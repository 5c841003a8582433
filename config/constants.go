package config

import "time"

// Polling Constants
const (
	// PollInterval is the period between artifact status re-fetches while an
	// artifact is not yet terminal. Tunable, not a hard contract.
	PollInterval = 3 * time.Second

	// RequestTimeout bounds every status/descriptor request so a slow fetch
	// cannot overlap the next poll tick.
	RequestTimeout = 3 * time.Second

	// ContentTimeout bounds artifact content downloads from access URLs,
	// which can be larger than status responses.
	ContentTimeout = 30 * time.Second
)

// Upload Constants
const (
	// MaxUploadBytes is the largest audio file the client will attempt to upload.
	MaxUploadBytes = 500 << 20

	// DefaultPreset is the summary generation preset used when none is chosen.
	DefaultPreset = "brief"
)

// Display Constants
const (
	// SpeakerPaletteSize is the number of distinct speaker color/icon slots.
	// Speakers beyond this wrap around the palette.
	SpeakerPaletteSize = 6

	// MaxActivityLogs caps the in-memory activity log ring buffer.
	MaxActivityLogs = 50
)
