package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"talklens/audioinfo"
	"talklens/client"
	"talklens/store"
)

// tickInterval drives the playback clock and view refresh.
const tickInterval = 500 * time.Millisecond

// tickCmd creates a command that ticks periodically.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// loadSessions refreshes the session listing through the store.
func loadSessions(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		sessions, err := st.RefreshSessions(context.Background())
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// loadPresets fetches the available summary presets.
func loadPresets(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		presets, err := c.SummaryPresets(context.Background())
		return PresetsLoadedMsg{Presets: presets, Err: err}
	}
}

// probeAudio inspects the local file chosen in the upload form.
func probeAudio(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := audioinfo.Probe(path)
		return ProbeDoneMsg{Info: info, Err: err}
	}
}

// uploadSession uploads a new recording.
func uploadSession(c *client.Client, req client.UploadRequest) tea.Cmd {
	return func() tea.Msg {
		session, err := c.CreateSession(context.Background(), req)
		return UploadDoneMsg{Session: session, Err: err}
	}
}

// deleteSession deletes one session including its blobs.
func deleteSession(st *store.Store, id string) tea.Cmd {
	return func() tea.Msg {
		err := st.Delete(context.Background(), id, true)
		return DeleteDoneMsg{SessionID: id, Err: err}
	}
}

// regenerateSummary requests a new summary with the given preset.
func regenerateSummary(st *store.Store, id, preset string) tea.Cmd {
	return func() tea.Msg {
		err := st.RegenerateSummary(context.Background(), id, preset)
		return RegenerateDoneMsg{Preset: preset, Err: err}
	}
}

// renameSpeaker stores a custom display name for a speaker.
func renameSpeaker(st *store.Store, id, speakerKey, name string) tea.Cmd {
	return func() tea.Msg {
		err := st.RenameSpeaker(context.Background(), id, speakerKey, name)
		return RenameDoneMsg{Err: err}
	}
}
