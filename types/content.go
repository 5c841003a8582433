package types

// TranscriptSegment is one chronological piece of the transcript. Writer is
// the raw speaker identity as produced by the pipeline (numeric index or
// label); display renaming happens elsewhere.
type TranscriptSegment struct {
	Text      string   `json:"text"`
	Writer    string   `json:"writer,omitempty"`
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`
	Language  string   `json:"language,omitempty"`
}

// EmotionOutput is one analyzer's scores for a time window: label -> 0..1.
type EmotionOutput struct {
	Scores    map[string]float64 `json:"scores"`
	Who       string             `json:"who,omitempty"`
	StartTime *float64           `json:"start_time,omitempty"`
	EndTime   *float64           `json:"end_time,omitempty"`
}

// EmotionBundle is one time-windowed, per-speaker set of emotion scores,
// optionally broken down by source. At least one of Text/Audio/Mixed is
// present. Mixed takes precedence over Audio over Text when a single score
// source is needed; sources are never merged.
type EmotionBundle struct {
	Text  *EmotionOutput `json:"text,omitempty"`
	Audio *EmotionOutput `json:"audio,omitempty"`
	Mixed *EmotionOutput `json:"mixed,omitempty"`

	Who       string             `json:"who,omitempty"`
	Segment   *TranscriptSegment `json:"segment,omitempty"`
	StartTime *float64           `json:"start_time,omitempty"`
	EndTime   *float64           `json:"end_time,omitempty"`
}

// PreferredScores returns the bundle's score source by fixed precedence:
// mixed, then audio, then text. Returns nil when the bundle has no scores.
func (b *EmotionBundle) PreferredScores() map[string]float64 {
	switch {
	case b.Mixed != nil && len(b.Mixed.Scores) > 0:
		return b.Mixed.Scores
	case b.Audio != nil && len(b.Audio.Scores) > 0:
		return b.Audio.Scores
	case b.Text != nil && len(b.Text.Scores) > 0:
		return b.Text.Scores
	}
	return nil
}

// Window returns the bundle's effective time window, falling back to the
// attached transcript segment when the bundle itself carries no timestamps.
func (b *EmotionBundle) Window() (start, end *float64) {
	start, end = b.StartTime, b.EndTime
	if start == nil && b.Segment != nil {
		start = b.Segment.StartTime
	}
	if end == nil && b.Segment != nil {
		end = b.Segment.EndTime
	}
	return start, end
}

// Summary is the generated natural-language summary for a session. Replaced
// wholesale on regeneration; never partially updated.
type Summary struct {
	Text       string             `json:"text"`
	PerSpeaker map[string]string  `json:"perSpeaker,omitempty"`
	Bullets    []string           `json:"bullets,omitempty"`
	Usage      map[string]float64 `json:"usage,omitempty"`
}
