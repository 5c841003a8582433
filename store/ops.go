package store

import (
	"context"
	"fmt"

	"talklens/poll"
	"talklens/types"
)

// RefreshSessions re-fetches and caches the session listing.
func (s *Store) RefreshSessions(ctx context.Context) ([]types.Session, error) {
	sessions, err := s.backend.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions = sessions
	s.sessionsSet = true
	s.mu.Unlock()
	s.changed("")
	return sessions, nil
}

// Sessions returns the cached session listing and whether one has been loaded.
func (s *Store) Sessions() ([]types.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions, s.sessionsSet
}

// RegenerateSummary requests a new summary with the given preset. Once the
// backend accepts, the summary slot is reset to a non-terminal state and
// polled from scratch: stale completed content is dropped immediately so the
// view never flashes the old summary as current.
func (s *Store) RegenerateSummary(ctx context.Context, id, preset string) error {
	if err := s.backend.RegenerateSummary(ctx, id, preset); err != nil {
		return err
	}

	s.mu.Lock()
	w, ok := s.watches[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	sl := w.slots[types.KindSummary]
	sl.generation++ // supersede any in-flight response for the old summary
	sl.status = types.StatusQueued
	sl.artifact = nil
	sl.content = nil
	sl.err = ""
	old := w.pollers[types.KindSummary]
	s.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	h := poll.Start(s.scheduler, s.interval,
		func() types.Status { return s.slotStatus(id, types.KindSummary) },
		func() { s.refetch(ctx, w, types.KindSummary) },
	)
	s.mu.Lock()
	if w.cancelled {
		s.mu.Unlock()
		h.Cancel()
		return nil
	}
	w.pollers[types.KindSummary] = h
	s.mu.Unlock()
	s.changed(id)
	s.refetch(ctx, w, types.KindSummary)
	return nil
}

// RenameSpeaker stores a custom display name for a speaker and updates the
// cached naming record. The underlying transcript and emotion identities are
// untouched; renaming is purely a display transform.
func (s *Store) RenameSpeaker(ctx context.Context, id, speakerKey, name string) error {
	s.mu.RLock()
	w, ok := s.watches[id]
	var nameMap map[string]string
	if ok && w.speakers != nil {
		nameMap = make(map[string]string, len(w.speakers.Map)+1)
		for k, v := range w.speakers.Map {
			nameMap[k] = v
		}
	} else {
		nameMap = make(map[string]string, 1)
	}
	s.mu.RUnlock()
	nameMap[speakerKey] = name

	if err := s.backend.SetSpeakers(ctx, id, nameMap); err != nil {
		return err
	}

	s.mu.Lock()
	if w, ok := s.watches[id]; ok {
		if w.speakers == nil {
			w.speakers = &types.SpeakerNames{Map: nameMap}
		} else {
			w.speakers.Map = nameMap
		}
	}
	s.mu.Unlock()
	s.changed(id)
	return nil
}

// DisplayName maps a canonical speaker key to its display name: the custom
// name when one is set, else "Speaker <key>" for numeric keys, else the key
// itself.
func (s *Store) DisplayName(id, speakerKey string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.watches[id]; ok && w.speakers != nil {
		if name, ok := w.speakers.Map[speakerKey]; ok && name != "" {
			return name
		}
	}
	if isDigits(speakerKey) {
		return "Speaker " + speakerKey
	}
	return speakerKey
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// SpeakerNames returns the cached naming record for a watched session, or
// nil when none has been fetched yet.
func (s *Store) SpeakerNames(id string) *types.SpeakerNames {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.watches[id]; ok {
		return w.speakers
	}
	return nil
}

// Delete removes one session (and its blobs when deleteBlobs is set), then
// evicts it from the cached listing and stops any watch on it.
func (s *Store) Delete(ctx context.Context, id string, deleteBlobs bool) error {
	if err := s.backend.DeleteSession(ctx, id, deleteBlobs); err != nil {
		return err
	}
	s.evict(id)
	s.Unwatch(id)
	s.changed("")
	return nil
}

// DeleteMany bulk-deletes sessions best-effort. Sessions the backend reports
// as deleted are evicted; failures stay listed. A partial failure is returned
// as an error carrying the counts, with the successful deletions applied.
func (s *Store) DeleteMany(ctx context.Context, ids []string, deleteBlobs bool) (*types.DeleteResult, error) {
	result, err := s.backend.DeleteSessions(ctx, ids, deleteBlobs)
	if err != nil {
		return nil, err
	}
	for _, id := range result.Deleted {
		s.evict(id)
		s.Unwatch(id)
	}
	s.changed("")
	if len(result.Failed) > 0 {
		return result, fmt.Errorf("deleted %d of %d sessions (%d failed)",
			len(result.Deleted), len(ids), len(result.Failed))
	}
	return result, nil
}

func (s *Store) evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	s.sessions = kept
}
