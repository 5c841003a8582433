package tui

import (
	"context"
	"fmt"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"talklens/client"
	"talklens/emotion"
	"talklens/types"
)

// trimLastRune removes the final rune so backspace never splits a
// multibyte character.
func trimLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// seekStep is how far left/right arrows move the playback clock.
const seekStep = 5.0

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		if m.Mode == modeDetail && m.Clock != nil {
			m.Clock.Advance(tickInterval.Seconds())
		}
		return m, tickCmd()

	case StoreChangedMsg:
		// State lives in the store; the message only forces a re-render.
		return m, nil

	case SessionsLoadedMsg:
		m.ListLoading = false
		if msg.Err != nil {
			m.ListErr = msg.Err.Error()
			return m, nil
		}
		m.ListErr = ""
		m.Sessions = msg.Sessions
		if m.Cursor >= len(m.Sessions) {
			m.Cursor = len(m.Sessions) - 1
		}
		if m.Cursor < 0 {
			m.Cursor = 0
		}
		return m, nil

	case PresetsLoadedMsg:
		if msg.Err != nil {
			m = m.AddLog(fmt.Sprintf("presets unavailable: %v", msg.Err))
			return m, nil
		}
		m.Presets = msg.Presets
		return m, nil

	case ProbeDoneMsg:
		m.UploadProbing = false
		duration := 0.0
		if msg.Err != nil {
			m = m.AddLog(fmt.Sprintf("probe failed, uploading without duration: %v", msg.Err))
		} else {
			duration = msg.Info.Duration
			m.UploadInfo = fmt.Sprintf("%s, %s", msg.Info.Format, formatClock(duration))
		}
		m.Uploading = true
		return m, uploadSession(m.api, client.UploadRequest{
			Title:     m.UploadTitle,
			AudioPath: m.UploadPath,
			Preset:    m.currentPreset(),
			Duration:  duration,
		})

	case UploadDoneMsg:
		m.Uploading = false
		if msg.Err != nil {
			m.UploadErr = msg.Err.Error()
			return m, nil
		}
		m = m.AddLog(fmt.Sprintf("uploaded %q (%s)", msg.Session.Title, msg.Session.ID))
		m.Mode = modeList
		m.UploadTitle = ""
		m.UploadPath = ""
		m.UploadErr = ""
		m.UploadInfo = ""
		m.UploadFocus = 0
		return m, loadSessions(m.st)

	case DeleteDoneMsg:
		if msg.Err != nil {
			m = m.AddLog(fmt.Sprintf("delete %s failed: %v", msg.SessionID, msg.Err))
		} else {
			m = m.AddLog(fmt.Sprintf("deleted %s", msg.SessionID))
		}
		return m, loadSessions(m.st)

	case RegenerateDoneMsg:
		if msg.Err != nil {
			m = m.AddLog(fmt.Sprintf("regenerate failed: %v", msg.Err))
		} else {
			m = m.AddLog(fmt.Sprintf("regenerating summary (%s)", msg.Preset))
		}
		return m, nil

	case RenameDoneMsg:
		if msg.Err != nil {
			m = m.AddLog(fmt.Sprintf("rename failed: %v", msg.Err))
		} else {
			m = m.AddLog("speaker renamed")
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.Mode {
	case modeList:
		return m.handleListKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeUpload:
		return m.handleUploadKey(msg)
	case modeRename:
		return m.handleRenameKey(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Sessions)-1 {
			m.Cursor++
		}
	case "enter":
		if m.Cursor < len(m.Sessions) {
			id := m.Sessions[m.Cursor].ID
			m = m.openDetail(id)
			m.st.Watch(context.Background(), id)
		}
	case "u":
		m.Mode = modeUpload
		m.UploadErr = ""
		m.UploadFocus = 0
	case "d":
		if m.Cursor < len(m.Sessions) {
			return m, deleteSession(m.st, m.Sessions[m.Cursor].ID)
		}
	case "r":
		m.ListLoading = true
		return m, loadSessions(m.st)
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		return m.closeDetail(), nil
	case " ":
		m.Clock.SetPlaying(!m.Clock.Playing())
	case "left":
		m.Clock.SeekTo(m.Clock.CurrentTime() - seekStep)
	case "right":
		m.Clock.SeekTo(m.Clock.CurrentTime() + seekStep)
	case "0":
		m.Clock.SeekTo(0)
	case "p":
		if len(m.Presets) > 0 {
			m.PresetIdx = (m.PresetIdx + 1) % len(m.Presets)
		}
	case "g":
		return m, regenerateSummary(m.st, m.SessionID, m.currentPreset())
	case "m":
		// Jump playback to the next emotional key moment.
		if snap := m.st.Artifact(m.SessionID, types.KindEmotions); snap.Content != nil {
			if peak, ok := emotion.NextPeak(emotion.Peaks(snap.Content.Emotions), m.Clock.CurrentTime()); ok {
				m.Clock.SeekTo(peak.Timestamp)
			}
		}
	default:
		// Digits pick a detected speaker to rename.
		if names := m.st.SpeakerNames(m.SessionID); names != nil {
			if idx := digitIndex(msg.String()); idx >= 0 && idx < len(names.Detected) {
				m.Mode = modeRename
				m.RenameKey = names.Detected[idx]
				m.RenameInput = ""
			}
		}
	}
	return m, nil
}

// digitIndex maps "1".."9" to 0..8, anything else to -1.
func digitIndex(key string) int {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return int(key[0] - '1')
	}
	return -1
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Uploading || m.UploadProbing {
		if msg.Type == tea.KeyEsc {
			m.Uploading = false
			m.UploadProbing = false
			m.Mode = modeList
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.Mode = modeList
		return m, nil
	case tea.KeyTab, tea.KeyDown, tea.KeyUp:
		m.UploadFocus = 1 - m.UploadFocus
		return m, nil
	case tea.KeyEnter:
		if m.UploadTitle == "" {
			m.UploadErr = "title is required"
			return m, nil
		}
		if m.UploadPath == "" {
			m.UploadErr = "audio file is required"
			return m, nil
		}
		m.UploadErr = ""
		m.UploadProbing = true
		return m, probeAudio(m.UploadPath)
	case tea.KeyBackspace:
		if m.UploadFocus == 0 && len(m.UploadTitle) > 0 {
			m.UploadTitle = trimLastRune(m.UploadTitle)
		} else if m.UploadFocus == 1 && len(m.UploadPath) > 0 {
			m.UploadPath = trimLastRune(m.UploadPath)
		}
		return m, nil
	case tea.KeySpace:
		if m.UploadFocus == 0 {
			m.UploadTitle += " "
		}
		return m, nil
	case tea.KeyRunes:
		if m.UploadFocus == 0 {
			m.UploadTitle += string(msg.Runes)
		} else {
			m.UploadPath += string(msg.Runes)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.Mode = modeDetail
		m.RenameKey = ""
		m.RenameInput = ""
		return m, nil
	case tea.KeyEnter:
		key := m.RenameKey
		name := m.RenameInput
		m.Mode = modeDetail
		m.RenameKey = ""
		m.RenameInput = ""
		if name == "" {
			return m, nil
		}
		return m, renameSpeaker(m.st, m.SessionID, emotion.SpeakerKey(key), name)
	case tea.KeyBackspace:
		if len(m.RenameInput) > 0 {
			m.RenameInput = trimLastRune(m.RenameInput)
		}
		return m, nil
	case tea.KeySpace:
		m.RenameInput += " "
		return m, nil
	case tea.KeyRunes:
		m.RenameInput += string(msg.Runes)
		return m, nil
	}
	return m, nil
}
