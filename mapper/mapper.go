// Package mapper normalizes the backend's raw artifact payloads into the
// canonical shapes the rest of the client consumes. The pipeline has shipped
// several spellings of the same concepts over time (t0/t1 vs
// start_time/end_time, emotions_intensity_dict vs scores, whom vs who,
// snake_case vs camelCase); all of that tolerance lives here and nowhere else.
package mapper

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"talklens/types"
)

// rawSegment tolerates both timestamp spellings and a writer that may be a
// JSON string or number.
type rawSegment struct {
	Text      string          `json:"text"`
	Writer    json.RawMessage `json:"writer"`
	T0        *float64        `json:"t0"`
	T1        *float64        `json:"t1"`
	StartTime *float64        `json:"start_time"`
	EndTime   *float64        `json:"end_time"`
	Language  string          `json:"language"`
}

type rawEmotionOutput struct {
	Scores        map[string]float64 `json:"scores"`
	IntensityDict map[string]float64 `json:"emotions_intensity_dict"`
	Whom          json.RawMessage    `json:"whom"`
	Who           json.RawMessage    `json:"who"`
	T0            *float64           `json:"t0"`
	T1            *float64           `json:"t1"`
	StartTime     *float64           `json:"start_time"`
	EndTime       *float64           `json:"end_time"`
}

type rawBundle struct {
	Text          *rawEmotionOutput `json:"text"`
	Audio         *rawEmotionOutput `json:"audio"`
	Mixed         *rawEmotionOutput `json:"mixed"`
	Whom          json.RawMessage   `json:"whom"`
	Who           json.RawMessage   `json:"who"`
	Transcription *rawSegment       `json:"transcription"`
	Segment       *rawSegment       `json:"segment"`
	T0            *float64          `json:"t0"`
	T1            *float64          `json:"t1"`
	StartTime     *float64          `json:"start_time"`
	EndTime       *float64          `json:"end_time"`
}

type rawSummary struct {
	Text            string             `json:"text"`
	Summary         string             `json:"summary"`
	PerSpeaker      map[string]string  `json:"perSpeaker"`
	PerSpeakerSnake map[string]string  `json:"per_speaker"`
	Bullets         []string           `json:"bullets"`
	Usage           map[string]float64 `json:"usage"`
}

// identity renders a raw writer/who value ("2", 2, 2.0, "Speaker 2") as a
// plain string. Returns "" for null/absent values.
func identity(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strings.Trim(string(raw), `"`)
}

func pick(alt, canonical *float64) *float64 {
	if alt != nil {
		return alt
	}
	return canonical
}

func mapSegment(raw *rawSegment) *types.TranscriptSegment {
	if raw == nil {
		return nil
	}
	return &types.TranscriptSegment{
		Text:      raw.Text,
		Writer:    identity(raw.Writer),
		StartTime: pick(raw.T0, raw.StartTime),
		EndTime:   pick(raw.T1, raw.EndTime),
		Language:  raw.Language,
	}
}

func mapOutput(raw *rawEmotionOutput) *types.EmotionOutput {
	if raw == nil {
		return nil
	}
	scores := raw.Scores
	if len(scores) == 0 {
		scores = raw.IntensityDict
	}
	who := identity(raw.Whom)
	if who == "" {
		who = identity(raw.Who)
	}
	return &types.EmotionOutput{
		Scores:    scores,
		Who:       who,
		StartTime: pick(raw.T0, raw.StartTime),
		EndTime:   pick(raw.T1, raw.EndTime),
	}
}

// Transcript parses a raw transcript payload (JSON array of segments) into
// canonical segments, ordered by start time. Segments without text are
// dropped.
func Transcript(data []byte) ([]types.TranscriptSegment, error) {
	var raws []rawSegment
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("transcript payload is not a segment array: %w", err)
	}
	out := make([]types.TranscriptSegment, 0, len(raws))
	for i := range raws {
		seg := mapSegment(&raws[i])
		if seg.Text == "" {
			continue
		}
		out = append(out, *seg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StartTime, out[j].StartTime
		if a == nil || b == nil {
			return false
		}
		return *a < *b
	})
	return out, nil
}

// Emotions parses a raw emotions payload (JSON array of bundles) into
// canonical bundles. Bundles carrying no score source at all are dropped.
func Emotions(data []byte) ([]types.EmotionBundle, error) {
	var raws []rawBundle
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("emotions payload is not a bundle array: %w", err)
	}
	out := make([]types.EmotionBundle, 0, len(raws))
	for i := range raws {
		raw := &raws[i]
		seg := raw.Transcription
		if seg == nil {
			seg = raw.Segment
		}
		who := identity(raw.Whom)
		if who == "" {
			who = identity(raw.Who)
		}
		b := types.EmotionBundle{
			Text:      mapOutput(raw.Text),
			Audio:     mapOutput(raw.Audio),
			Mixed:     mapOutput(raw.Mixed),
			Who:       who,
			Segment:   mapSegment(seg),
			StartTime: pick(raw.T0, raw.StartTime),
			EndTime:   pick(raw.T1, raw.EndTime),
		}
		if b.Text == nil && b.Audio == nil && b.Mixed == nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Summary parses a summary payload, which may be a JSON object or plain
// markdown text. Plain text becomes Summary.Text verbatim.
func Summary(data []byte) (types.Summary, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return types.Summary{Text: trimmed}, nil
	}
	var raw rawSummary
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Summary{}, fmt.Errorf("summary payload is neither text nor object: %w", err)
	}
	text := raw.Text
	if text == "" {
		text = raw.Summary
	}
	per := raw.PerSpeaker
	if len(per) == 0 {
		per = raw.PerSpeakerSnake
	}
	bullets := make([]string, 0, len(raw.Bullets))
	for _, b := range raw.Bullets {
		if b != "" {
			bullets = append(bullets, b)
		}
	}
	if len(bullets) == 0 {
		bullets = nil
	}
	return types.Summary{
		Text:       text,
		PerSpeaker: per,
		Bullets:    bullets,
		Usage:      raw.Usage,
	}, nil
}
