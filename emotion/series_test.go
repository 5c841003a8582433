package emotion

import (
	"reflect"
	"testing"

	"talklens/types"
)

func ptr(f float64) *float64 { return &f }

func bundle(who string, start, end float64, mixed, audio, text map[string]float64) types.EmotionBundle {
	b := types.EmotionBundle{Who: who, StartTime: ptr(start), EndTime: ptr(end)}
	if mixed != nil {
		b.Mixed = &types.EmotionOutput{Scores: mixed}
	}
	if audio != nil {
		b.Audio = &types.EmotionOutput{Scores: audio}
	}
	if text != nil {
		b.Text = &types.EmotionOutput{Scores: text}
	}
	return b
}

func TestSpeakerKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Speaker 1", "1"},
		{"speaker 2", "2"},
		{"2", "2"},
		{"Alice", "Alice"},
		{"  Alice  ", "Alice"},
		{"", "Unknown"},
		{"   ", "Unknown"},
	}

	for _, tt := range tests {
		if got := SpeakerKey(tt.raw); got != tt.want {
			t.Errorf("SpeakerKey(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestBuildSeriesScalesAndSorts(t *testing.T) {
	bundles := []types.EmotionBundle{
		// Out of order on purpose; the series must come out sorted.
		bundle("1", 3, 6.004, map[string]float64{"joy": 0.456}, nil, nil),
		bundle("1", 0, 3, map[string]float64{"Joy": 0.9}, nil, nil),
		bundle("2", 0, 3, nil, map[string]float64{"joy": 0.2}, nil),
	}

	series := BuildSeries(bundles, []string{"joy"})
	if len(series) != 2 {
		t.Fatalf("expected 2 speakers, got %d: %v", len(series), series)
	}

	one := series["1"]
	if len(one) != 2 {
		t.Fatalf("speaker 1 should have 2 points, got %d", len(one))
	}
	if one[0].EndTime != 3 || one[1].EndTime != 6 {
		t.Errorf("points not sorted or end not rounded: %+v", one)
	}
	// Case-insensitive label match, x100 scaling, 2-decimal rounding.
	if one[0].Values["joy"] != 90 {
		t.Errorf("expected 90, got %v", one[0].Values["joy"])
	}
	if one[1].Values["joy"] != 45.6 {
		t.Errorf("expected 45.6, got %v", one[1].Values["joy"])
	}

	if series["2"][0].Values["joy"] != 20 {
		t.Errorf("audio fallback not scaled: %+v", series["2"])
	}
}

func TestBuildSeriesSkipsUnusableBundles(t *testing.T) {
	noEnd := types.EmotionBundle{Who: "1", Mixed: &types.EmotionOutput{Scores: map[string]float64{"joy": 1}}}
	noScores := types.EmotionBundle{Who: "1", EndTime: ptr(3)}

	series := BuildSeries([]types.EmotionBundle{noEnd, noScores}, []string{"joy"})
	if len(series) != 0 {
		t.Errorf("expected no series, got %v", series)
	}
}

func TestBuildSeriesWindowFallsBackToSegment(t *testing.T) {
	b := types.EmotionBundle{
		Who:     "1",
		Mixed:   &types.EmotionOutput{Scores: map[string]float64{"joy": 0.5}},
		Segment: &types.TranscriptSegment{EndTime: ptr(7)},
	}
	series := BuildSeries([]types.EmotionBundle{b}, []string{"joy"})
	if len(series["1"]) != 1 || series["1"][0].EndTime != 7 {
		t.Errorf("segment end time not used: %v", series)
	}
}

func TestBuildSeriesGroupsBySegmentWriter(t *testing.T) {
	b := types.EmotionBundle{
		Mixed:   &types.EmotionOutput{Scores: map[string]float64{"joy": 0.5}},
		Segment: &types.TranscriptSegment{Writer: "Speaker 3", EndTime: ptr(2)},
	}
	series := BuildSeries([]types.EmotionBundle{b}, []string{"joy"})
	if _, ok := series["3"]; !ok {
		t.Errorf("expected canonical key \"3\", got %v", series)
	}
}

func TestLabels(t *testing.T) {
	bundles := []types.EmotionBundle{
		bundle("1", 0, 3, map[string]float64{"Joy": 0.9, "anger": 0.1}, nil, nil),
		bundle("2", 3, 6, nil, nil, map[string]float64{"sadness": 0.4}),
	}
	got := Labels(bundles)
	want := []string{"anger", "joy", "sadness"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Labels = %v, want %v", got, want)
	}
}

func TestDominantPrecedence(t *testing.T) {
	// Mixed says joy wins outright even though audio and text disagree;
	// sources are never averaged.
	b := bundle("1", 0, 10,
		map[string]float64{"joy": 0.9, "anger": 0.05},
		map[string]float64{"anger": 0.5},
		map[string]float64{"anger": 0.5})

	if got := Dominant([]types.EmotionBundle{b}, "1", 5); got != "joy" {
		t.Errorf("Dominant = %q, want joy", got)
	}
}

func TestDominantIntervalRule(t *testing.T) {
	bundles := []types.EmotionBundle{
		bundle("1", 0, 3, map[string]float64{"joy": 1}, nil, nil),
		bundle("1", 3, 6, map[string]float64{"anger": 1}, nil, nil),
		bundle("1", 10, 12, map[string]float64{"calm": 1}, nil, nil),
	}

	tests := []struct {
		name string
		t    float64
		want string
	}{
		{"covering window", 1, "joy"},
		{"boundary, latest end wins", 3, "anger"},
		{"gap falls back to last ended", 8, "anger"},
		{"before any window", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dominant(bundles, "1", tt.t); got != tt.want {
				t.Errorf("Dominant(%v) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}

func TestDominantTieBreaksAlphabetically(t *testing.T) {
	b := bundle("1", 0, 5, map[string]float64{"surprise": 0.5, "anger": 0.5, "joy": 0.5}, nil, nil)
	if got := Dominant([]types.EmotionBundle{b}, "1", 2); got != "anger" {
		t.Errorf("tie should resolve alphabetically, got %q", got)
	}
}

func TestDominantUnknownSpeaker(t *testing.T) {
	b := bundle("1", 0, 5, map[string]float64{"joy": 1}, nil, nil)
	if got := Dominant([]types.EmotionBundle{b}, "2", 2); got != "" {
		t.Errorf("expected empty for unknown speaker, got %q", got)
	}
}

func TestActiveSpeaker(t *testing.T) {
	bundles := []types.EmotionBundle{
		bundle("1", 0, 3, map[string]float64{"joy": 1}, nil, nil),
		bundle("2", 3, 6, map[string]float64{"anger": 1}, nil, nil),
	}
	if got := ActiveSpeaker(bundles, 4); got != "2" {
		t.Errorf("ActiveSpeaker = %q, want 2", got)
	}
	if got := ActiveSpeaker(bundles, 1); got != "1" {
		t.Errorf("ActiveSpeaker = %q, want 1", got)
	}
}
