package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"talklens/client"
	"talklens/config"
	"talklens/emotion"
	"talklens/store"
	"talklens/timesync"
	"talklens/types"
)

// mode selects which screen the TUI is showing.
type mode int

const (
	modeList mode = iota
	modeDetail
	modeUpload
	modeRename
)

// Model represents the TUI client state (thin client over the artifact store)
type Model struct {
	api *client.Client
	st  *store.Store

	Mode mode

	// Session list
	Sessions    []types.Session
	Cursor      int
	ListErr     string
	ListLoading bool

	// Summary presets
	Presets   []types.SummaryPreset
	PresetIdx int

	// Detail view: one watched session with a playback clock and a
	// per-view speaker registry so identities stay stable while it is open.
	SessionID string
	Clock     *timesync.Coordinator
	Speakers  *emotion.Registry

	// Upload form
	UploadTitle   string
	UploadPath    string
	UploadFocus   int // 0 = title, 1 = path
	UploadErr     string
	UploadProbing bool
	UploadInfo    string
	Uploading     bool

	// Rename form
	RenameKey   string
	RenameInput string

	// Activity log (ring buffer)
	Logs []string
}

// NewModel creates a new TUI model
func NewModel(api *client.Client, st *store.Store) Model {
	return Model{
		api:         api,
		st:          st,
		Mode:        modeList,
		ListLoading: true,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadSessions(m.st),
		loadPresets(m.api),
		tickCmd(),
	)
}

// AddLog appends an activity line, keeping the ring bounded.
func (m Model) AddLog(message string) Model {
	m.Logs = append(m.Logs, message)
	if len(m.Logs) > config.MaxActivityLogs {
		m.Logs = m.Logs[len(m.Logs)-config.MaxActivityLogs:]
	}
	return m
}

// openDetail switches to the detail screen for the session under the cursor.
func (m Model) openDetail(id string) Model {
	m.Mode = modeDetail
	m.SessionID = id
	m.Clock = timesync.New(nil)
	m.Speakers = emotion.NewRegistry()
	return m
}

// closeDetail leaves the detail screen, cancelling the session's pollers.
func (m Model) closeDetail() Model {
	if m.SessionID != "" {
		m.st.Unwatch(m.SessionID)
	}
	m.Mode = modeList
	m.SessionID = ""
	m.Clock = nil
	m.Speakers = nil
	return m
}

// currentPreset returns the preset key selected for regeneration.
func (m Model) currentPreset() string {
	if len(m.Presets) == 0 {
		return config.DefaultPreset
	}
	return m.Presets[m.PresetIdx%len(m.Presets)].Key
}

// Run wires the client, store and program together and blocks until exit.
func Run(cfg config.Config) error {
	api := client.New(cfg)

	var program atomic.Pointer[tea.Program]
	st := store.New(api, store.WithNotify(func(sessionID string) {
		if p := program.Load(); p != nil {
			p.Send(StoreChangedMsg{SessionID: sessionID})
		}
	}))

	p := tea.NewProgram(NewModel(api, st), tea.WithAltScreen())
	program.Store(p)
	_, err := p.Run()
	return err
}
