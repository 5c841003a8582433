package tui

import (
	"time"

	"talklens/audioinfo"
	"talklens/types"
)

// Messages for the tea program

// TickMsg drives the playback clock and periodic re-render.
type TickMsg struct {
	Time time.Time
}

// StoreChangedMsg is sent whenever the artifact store's state changes.
type StoreChangedMsg struct {
	SessionID string
}

// SessionsLoadedMsg carries the refreshed session listing.
type SessionsLoadedMsg struct {
	Sessions []types.Session
	Err      error
}

// PresetsLoadedMsg carries the available summary presets.
type PresetsLoadedMsg struct {
	Presets []types.SummaryPreset
	Err     error
}

// ProbeDoneMsg carries the local audio probe result for an upload.
type ProbeDoneMsg struct {
	Info *audioinfo.Info
	Err  error
}

// UploadDoneMsg is sent when an upload finishes.
type UploadDoneMsg struct {
	Session *types.Session
	Err     error
}

// DeleteDoneMsg is sent when a delete finishes.
type DeleteDoneMsg struct {
	SessionID string
	Err       error
}

// RegenerateDoneMsg is sent when a summary regeneration request is accepted.
type RegenerateDoneMsg struct {
	Preset string
	Err    error
}

// RenameDoneMsg is sent when a speaker rename finishes.
type RenameDoneMsg struct {
	Err error
}
