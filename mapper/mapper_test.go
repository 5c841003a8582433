package mapper

import (
	"testing"
)

func TestTranscriptNormalizesSpellings(t *testing.T) {
	data := []byte(`[
		{"text": "hello", "writer": 1, "t0": 0.5, "t1": 2},
		{"text": "hi there", "writer": "Speaker 2", "start_time": 2, "end_time": 4.5},
		{"text": "", "writer": 1, "t0": 4.5, "t1": 5}
	]`)

	segments, err := Transcript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("empty-text segments must be dropped, got %d segments", len(segments))
	}

	if segments[0].Writer != "1" {
		t.Errorf("numeric writer should render as string: %q", segments[0].Writer)
	}
	if segments[0].StartTime == nil || *segments[0].StartTime != 0.5 {
		t.Errorf("t0 not mapped: %+v", segments[0].StartTime)
	}
	if segments[1].Writer != "Speaker 2" {
		t.Errorf("string writer mangled: %q", segments[1].Writer)
	}
	if segments[1].EndTime == nil || *segments[1].EndTime != 4.5 {
		t.Errorf("end_time not mapped: %+v", segments[1].EndTime)
	}
}

func TestTranscriptSortsByStartTime(t *testing.T) {
	data := []byte(`[
		{"text": "second", "writer": 2, "t0": 5, "t1": 8},
		{"text": "first", "writer": 1, "t0": 0, "t1": 5}
	]`)

	segments, err := Transcript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segments[0].Text != "first" || segments[1].Text != "second" {
		t.Errorf("segments not ordered by start time: %+v", segments)
	}
}

func TestTranscriptRejectsNonArray(t *testing.T) {
	if _, err := Transcript([]byte(`{"oops": true}`)); err == nil {
		t.Fatal("expected an error for a non-array payload")
	}
}

func TestEmotionsNormalizesSpellings(t *testing.T) {
	data := []byte(`[
		{
			"whom": 1,
			"t0": 0, "t1": 3,
			"mixed": {"emotions_intensity_dict": {"joy": 0.9, "anger": 0.1}},
			"text": {"scores": {"joy": 0.5}},
			"transcription": {"text": "hello", "writer": 1, "t0": 0, "t1": 3}
		},
		{
			"who": "2",
			"start_time": 3, "end_time": 6,
			"audio": {"scores": {"sadness": 0.4}, "whom": 2}
		},
		{"who": "3", "t0": 6, "t1": 9}
	]`)

	bundles, err := Emotions(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundles) != 2 {
		t.Fatalf("scoreless bundles must be dropped, got %d", len(bundles))
	}

	first := bundles[0]
	if first.Who != "1" {
		t.Errorf("whom not normalized: %q", first.Who)
	}
	if first.Mixed == nil || first.Mixed.Scores["joy"] != 0.9 {
		t.Errorf("emotions_intensity_dict not mapped to scores: %+v", first.Mixed)
	}
	if first.Segment == nil || first.Segment.Text != "hello" {
		t.Errorf("transcription not mapped to segment: %+v", first.Segment)
	}

	second := bundles[1]
	if second.StartTime == nil || *second.StartTime != 3 {
		t.Errorf("start_time not mapped: %+v", second.StartTime)
	}
	if second.Audio == nil || second.Audio.Who != "2" {
		t.Errorf("nested whom not normalized: %+v", second.Audio)
	}
}

func TestEmotionsPrecedenceNeverAverages(t *testing.T) {
	data := []byte(`[{
		"who": 1,
		"text": {"scores": {"joy": 0.1}},
		"audio": {"scores": {"joy": 0.5}},
		"mixed": {"scores": {"joy": 0.9}}
	}]`)

	bundles, err := Emotions(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scores := bundles[0].PreferredScores()
	if scores["joy"] != 0.9 {
		t.Errorf("mixed must win outright, got %v", scores["joy"])
	}
}

func TestSummaryPlainText(t *testing.T) {
	summary, err := Summary([]byte("# Recap\n\nEveryone agreed.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Text != "# Recap\n\nEveryone agreed." {
		t.Errorf("plain markdown should pass through trimmed: %q", summary.Text)
	}
}

func TestSummaryObject(t *testing.T) {
	tests := []struct {
		name string
		data string
		text string
		per  string
	}{
		{
			name: "canonical keys",
			data: `{"text": "Recap", "perSpeaker": {"1": "Spoke a lot"}, "bullets": ["a", ""]}`,
			text: "Recap",
			per:  "Spoke a lot",
		},
		{
			name: "legacy keys",
			data: `{"summary": "Recap", "per_speaker": {"1": "Spoke a lot"}}`,
			text: "Recap",
			per:  "Spoke a lot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := Summary([]byte(tt.data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if summary.Text != tt.text {
				t.Errorf("text = %q", summary.Text)
			}
			if summary.PerSpeaker["1"] != tt.per {
				t.Errorf("perSpeaker = %+v", summary.PerSpeaker)
			}
			for _, b := range summary.Bullets {
				if b == "" {
					t.Error("empty bullets must be dropped")
				}
			}
		})
	}
}

func TestSummaryMalformedObject(t *testing.T) {
	if _, err := Summary([]byte(`{"text": `)); err == nil {
		t.Fatal("expected an error for a truncated object")
	}
}

func TestIdentityRendering(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"2"`, "2"},
		{`2`, "2"},
		{`2.0`, "2"},
		{`2.5`, "2.5"},
		{`"Speaker 2"`, "Speaker 2"},
		{`null`, ""},
		{``, ""},
	}

	for _, tt := range tests {
		if got := identity([]byte(tt.raw)); got != tt.want {
			t.Errorf("identity(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
