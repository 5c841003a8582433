package types

// Status represents the processing lifecycle of a single session artifact.
// The backend advances it monotonically; the client never writes it directly.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further polling should happen for this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Known reports whether the status is one of the defined lifecycle values.
// Anything else (including the empty string for a not-yet-fetched artifact)
// is treated as non-terminal by the poller.
func (s Status) Known() bool {
	switch s {
	case StatusNotStarted, StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ArtifactAccess holds the time-limited access grant for a completed artifact.
// Authorization is embedded in the URL signature; no credentials are attached
// when fetching it. SASURL is the legacy field name for the same concept.
type ArtifactAccess struct {
	ObjectPath string `json:"object_path"`
	AccessURL  string `json:"access_url,omitempty"`
	SASURL     string `json:"sas_url,omitempty"`
	ExpiresAt  string `json:"expires_at"`
}

// URL returns the preferred content URL: access_url when present, else the
// legacy sas_url.
func (a ArtifactAccess) URL() string {
	if a.AccessURL != "" {
		return a.AccessURL
	}
	return a.SASURL
}

// Artifact is the canonical descriptor for one of a session's five
// independently-processed outputs. Result is non-nil iff Status is completed.
type Artifact struct {
	Status Status          `json:"status"`
	Result *ArtifactAccess `json:"result,omitempty"`
}

// Kind identifies one of the five artifacts owned by a session.
type Kind string

const (
	KindMetadata   Kind = "metadata"
	KindAudio      Kind = "audio"
	KindTranscript Kind = "transcript"
	KindEmotions   Kind = "emotions"
	KindSummary    Kind = "summary"
)

// Kinds lists all artifact kinds in display order.
var Kinds = []Kind{KindMetadata, KindAudio, KindTranscript, KindEmotions, KindSummary}

// Session is the metadata record for one uploaded conversation, including the
// per-artifact status fields reported by the backend.
type Session struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	CreatedAt    string   `json:"created_at"`
	Duration     float64  `json:"duration,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Language     string   `json:"language,omitempty"`

	SessionStatus    Status `json:"session_status,omitempty"`
	AudioStatus      Status `json:"audio_status,omitempty"`
	TranscriptStatus Status `json:"transcript_status,omitempty"`
	EmotionStatus    Status `json:"emotion_status,omitempty"`
	SummaryStatus    Status `json:"summary_status,omitempty"`
}

// StatusFor returns the session's reported status for the given artifact kind.
func (s *Session) StatusFor(kind Kind) Status {
	switch kind {
	case KindMetadata:
		return s.SessionStatus
	case KindAudio:
		return s.AudioStatus
	case KindTranscript:
		return s.TranscriptStatus
	case KindEmotions:
		return s.EmotionStatus
	case KindSummary:
		return s.SummaryStatus
	}
	return ""
}

// SpeakerNames is the custom speaker naming record for a session: the speaker
// labels the pipeline detected, a short sample utterance per label, and the
// user-assigned display names. Renaming is a display-layer transform; the
// persisted transcript is never rewritten.
type SpeakerNames struct {
	Detected []string          `json:"detected"`
	Samples  map[string]string `json:"samples,omitempty"`
	Map      map[string]string `json:"map"`
}

// SummaryPreset is one available summary generation style.
type SummaryPreset struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// DeleteResult reports the per-id outcome of a bulk delete. Bulk deletes are
// best-effort: some ids can succeed while others fail.
type DeleteResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}
