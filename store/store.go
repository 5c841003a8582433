// Package store aggregates the five independently-processed artifacts of each
// watched session: metadata, audio, transcript, emotions and summary. Each
// artifact gets its own poller and its own lifecycle; a failed transcript
// never blocks the summary, and readiness arrives in whatever order the
// backend produces it. All state lives behind one RWMutex and is read through
// snapshots.
package store

import (
	"context"
	"sync"
	"time"

	"talklens/client"
	"talklens/config"
	"talklens/poll"
	"talklens/types"
)

// Backend is the slice of the API client the store depends on. *client.Client
// satisfies it; tests substitute fakes.
type Backend interface {
	ListSessions(ctx context.Context) ([]types.Session, error)
	GetSession(ctx context.Context, id string) (*types.Session, error)
	FetchArtifact(ctx context.Context, sessionID string, kind types.Kind) (*types.Artifact, error)
	Resolve(ctx context.Context, kind types.Kind, artifact *types.Artifact) (*client.Content, error)
	RegenerateSummary(ctx context.Context, sessionID, preset string) error
	Speakers(ctx context.Context, sessionID string) (*types.SpeakerNames, error)
	SetSpeakers(ctx context.Context, sessionID string, nameMap map[string]string) error
	DeleteSession(ctx context.Context, id string, deleteBlobs bool) error
	DeleteSessions(ctx context.Context, ids []string, deleteBlobs bool) (*types.DeleteResult, error)
}

var _ Backend = (*client.Client)(nil)

// Snapshot is the read view of one artifact slot.
type Snapshot struct {
	Status  types.Status
	Content *client.Content
	// Err is the display-level load error (transport, parse, expired URL),
	// distinct from a backend-reported failed status.
	Err string
}

// slot tracks one artifact's lifecycle. generation increments every time a
// new request for this slot is issued; a response is discarded unless it
// carries the latest generation, so a stale in-flight response can never
// overwrite a newer state.
type slot struct {
	status     types.Status
	artifact   *types.Artifact
	content    *client.Content
	err        string
	generation uint64
	resolving  bool
}

// watch is the full polling state for one session id.
type watch struct {
	id        string
	session   *types.Session
	speakers  *types.SpeakerNames
	slots     map[types.Kind]*slot
	pollers   map[types.Kind]*poll.Handle
	cancelled bool
}

// Store owns the per-session artifact state and the cached session listing.
type Store struct {
	mu sync.RWMutex

	backend   Backend
	scheduler poll.Scheduler
	interval  time.Duration

	sessions    []types.Session
	sessionsSet bool
	watches     map[string]*watch

	// notify, when set, is invoked (outside the lock) after any state
	// change, with the affected session id. The TUI uses it to wake up.
	notify func(sessionID string)
}

// Option configures a Store.
type Option func(*Store)

// WithScheduler substitutes the poll scheduler, used by tests to drive ticks.
func WithScheduler(s poll.Scheduler) Option {
	return func(st *Store) { st.scheduler = s }
}

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(st *Store) { st.interval = d }
}

// WithNotify registers the change callback.
func WithNotify(fn func(sessionID string)) Option {
	return func(st *Store) { st.notify = fn }
}

// New creates a Store backed by the given API client.
func New(backend Backend, opts ...Option) *Store {
	st := &Store{
		backend:   backend,
		scheduler: poll.TickerScheduler{},
		interval:  config.PollInterval,
		watches:   make(map[string]*watch),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

func (s *Store) changed(sessionID string) {
	if s.notify != nil {
		s.notify(sessionID)
	}
}

// Watch starts tracking a session: one poller per artifact, each issuing an
// immediate first fetch. Watching an already-watched session is a no-op.
func (s *Store) Watch(ctx context.Context, id string) {
	s.mu.Lock()
	if _, ok := s.watches[id]; ok {
		s.mu.Unlock()
		return
	}
	w := &watch{
		id:      id,
		slots:   make(map[types.Kind]*slot, len(types.Kinds)),
		pollers: make(map[types.Kind]*poll.Handle, len(types.Kinds)),
	}
	for _, kind := range types.Kinds {
		w.slots[kind] = &slot{}
	}
	s.watches[id] = w
	s.mu.Unlock()

	for _, kind := range types.Kinds {
		kind := kind
		s.refetch(ctx, w, kind)
		h := poll.Start(s.scheduler, s.interval,
			func() types.Status { return s.slotStatus(id, kind) },
			func() { s.refetch(ctx, w, kind) },
		)
		s.mu.Lock()
		if w.cancelled {
			s.mu.Unlock()
			h.Cancel()
			continue
		}
		w.pollers[kind] = h
		s.mu.Unlock()
	}
}

// Unwatch stops tracking a session, cancelling all its pollers immediately.
// In-flight responses for the session are discarded on arrival.
func (s *Store) Unwatch(id string) {
	s.mu.Lock()
	w, ok := s.watches[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	w.cancelled = true
	delete(s.watches, id)
	pollers := w.pollers
	s.mu.Unlock()

	for _, h := range pollers {
		if h != nil {
			h.Cancel()
		}
	}
}

func (s *Store) slotStatus(id string, kind types.Kind) types.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.watches[id]
	if !ok {
		return types.StatusCompleted // watch gone: report terminal so the poller stops
	}
	return w.slots[kind].status
}

// refetch issues one status request for an artifact slot. The response is
// applied only if the slot has not been superseded by a later request and the
// watch is still alive.
func (s *Store) refetch(ctx context.Context, w *watch, kind types.Kind) {
	s.mu.Lock()
	if w.cancelled {
		s.mu.Unlock()
		return
	}
	sl := w.slots[kind]
	sl.generation++
	gen := sl.generation
	s.mu.Unlock()

	go func() {
		if kind == types.KindMetadata {
			session, err := s.backend.GetSession(ctx, w.id)
			s.applyMetadata(w, gen, session, err)
			return
		}
		artifact, err := s.backend.FetchArtifact(ctx, w.id, kind)
		s.applyArtifact(ctx, w, kind, gen, artifact, err)
	}()
}

// current reports whether a response generation is still the latest for its
// slot; stale responses are discarded without touching state.
func (w *watch) current(kind types.Kind, gen uint64) bool {
	return !w.cancelled && w.slots[kind].generation == gen
}

func (s *Store) applyMetadata(w *watch, gen uint64, session *types.Session, err error) {
	s.mu.Lock()
	if !w.current(types.KindMetadata, gen) {
		s.mu.Unlock()
		return
	}
	sl := w.slots[types.KindMetadata]
	if err != nil {
		sl.err = err.Error()
		s.mu.Unlock()
		s.changed(w.id)
		return
	}
	sl.err = ""
	w.session = session
	sl.status = session.SessionStatus
	if sl.status == "" {
		// Older backends omit session_status; a session that exists is done.
		sl.status = types.StatusCompleted
	}
	s.mu.Unlock()
	s.changed(w.id)
}

func (s *Store) applyArtifact(ctx context.Context, w *watch, kind types.Kind, gen uint64, artifact *types.Artifact, err error) {
	s.mu.Lock()
	if !w.current(kind, gen) {
		s.mu.Unlock()
		return
	}
	sl := w.slots[kind]
	if err != nil {
		sl.err = err.Error()
		s.mu.Unlock()
		s.changed(w.id)
		return
	}
	sl.err = ""
	sl.status = artifact.Status
	sl.artifact = artifact

	needsResolve := artifact.Status == types.StatusCompleted && sl.content == nil && !sl.resolving
	if needsResolve {
		sl.resolving = true
	}
	s.mu.Unlock()
	s.changed(w.id)

	if needsResolve {
		s.resolve(ctx, w, kind, gen, artifact)
	}
}

// resolve performs the second hop: fetching the completed artifact's content
// from its access URL. An expired URL triggers a fresh descriptor fetch
// rather than a retry of the dead link.
func (s *Store) resolve(ctx context.Context, w *watch, kind types.Kind, gen uint64, artifact *types.Artifact) {
	content, err := s.backend.Resolve(ctx, kind, artifact)

	s.mu.Lock()
	sl := w.slots[kind]
	sl.resolving = false
	if !w.current(kind, gen) {
		// Superseded while in flight. The current request may have skipped
		// resolution because this one still held the slot; if its completed
		// artifact is sitting unresolved, pick it up under the new generation.
		retry := !w.cancelled && sl.status == types.StatusCompleted &&
			sl.content == nil && sl.artifact != nil
		if !retry {
			s.mu.Unlock()
			return
		}
		sl.resolving = true
		curGen, curArtifact := sl.generation, sl.artifact
		s.mu.Unlock()
		s.resolve(ctx, w, kind, curGen, curArtifact)
		return
	}
	if err != nil {
		sl.err = err.Error()
		expired := false
		if _, ok := err.(*client.ExpiredError); ok {
			expired = true
		}
		s.mu.Unlock()
		s.changed(w.id)
		if expired {
			s.refetch(ctx, w, kind)
		}
		return
	}
	sl.err = ""
	sl.content = content
	s.mu.Unlock()
	s.changed(w.id)

	if kind == types.KindTranscript {
		s.loadSpeakers(ctx, w)
	}
}

// loadSpeakers lazily fetches the speaker naming record once the transcript
// is available. Failures are silent; display falls back to raw identities.
func (s *Store) loadSpeakers(ctx context.Context, w *watch) {
	s.mu.RLock()
	have := w.speakers != nil || w.cancelled
	s.mu.RUnlock()
	if have {
		return
	}

	names, err := s.backend.Speakers(ctx, w.id)
	if err != nil || names == nil {
		return
	}
	s.mu.Lock()
	if !w.cancelled && w.speakers == nil {
		w.speakers = names
	}
	s.mu.Unlock()
	s.changed(w.id)
}

// Artifact returns a snapshot of one artifact slot for a watched session.
func (s *Store) Artifact(id string, kind types.Kind) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.watches[id]
	if !ok {
		return Snapshot{}
	}
	sl := w.slots[kind]
	return Snapshot{Status: sl.status, Content: sl.content, Err: sl.err}
}

// Session returns the watched session's metadata, or nil before the first
// successful metadata fetch.
func (s *Store) Session(id string) *types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.watches[id]; ok {
		return w.session
	}
	return nil
}

// Refetch forces an immediate status re-request for one artifact.
func (s *Store) Refetch(ctx context.Context, id string, kind types.Kind) {
	s.mu.RLock()
	w, ok := s.watches[id]
	s.mu.RUnlock()
	if ok {
		s.refetch(ctx, w, kind)
	}
}
