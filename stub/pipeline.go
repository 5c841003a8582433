package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"talklens/types"
)

// Blobs is the slice of the blob store the stub needs. common.S3 satisfies it.
type Blobs interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	Delete(ctx context.Context, bucket, key string) error
}

// stageDelay is how long each fabricated processing stage "works".
const stageDelay = 4 * time.Second

var sampleLines = []string{
	"I think we should revisit the timeline for the release.",
	"That makes sense, but the testing phase is already compressed.",
	"Could we bring in another reviewer to speed things up?",
	"Let me check who has capacity this sprint.",
	"I'm a bit worried about the integration risks here.",
	"Agreed, let's schedule a dedicated session for that.",
	"The customer feedback from last week was mostly positive.",
	"Good, then we can focus on the remaining edge cases.",
}

var sampleEmotions = []string{"joy", "calm", "stress", "sadness", "excited"}

// Pipeline fabricates artifact payloads and advances their statuses, standing
// in for the real transcription/emotion/summary services.
type Pipeline struct {
	registry *Registry
	blobs    Blobs
	bucket   string
}

// NewPipeline creates a fabrication pipeline.
func NewPipeline(registry *Registry, blobs Blobs, bucket string) *Pipeline {
	return &Pipeline{registry: registry, blobs: blobs, bucket: bucket}
}

// Kick starts fabricated processing for a freshly-uploaded session. Each
// derived artifact moves queued -> processing -> completed on its own timer,
// deliberately out of lockstep so the client's independent polling shows.
func (p *Pipeline) Kick(id string, duration float64) {
	go p.run(id, duration)
}

func (p *Pipeline) run(id string, duration float64) {
	ctx := context.Background()

	if duration <= 0 {
		duration = 300
	}

	type stage struct {
		kind    types.Kind
		produce func(ctx context.Context, rec *Record) error
	}
	stages := []stage{
		{types.KindTranscript, func(ctx context.Context, rec *Record) error {
			return p.produceTranscript(ctx, rec, duration)
		}},
		{types.KindEmotions, func(ctx context.Context, rec *Record) error {
			return p.produceEmotions(ctx, rec, duration)
		}},
		{types.KindSummary, p.produceSummary},
	}

	for _, st := range stages {
		if err := p.setStatus(ctx, id, st.kind, types.StatusProcessing); err != nil {
			log.Printf("stub pipeline: session %s vanished: %v", id, err)
			return
		}
		time.Sleep(stageDelay)

		rec, err := p.registry.Get(ctx, id)
		if err != nil || rec == nil {
			return
		}
		if err := st.produce(ctx, rec); err != nil {
			log.Printf("stub pipeline: %s for %s failed: %v", st.kind, id, err)
			_ = p.setStatus(ctx, id, st.kind, types.StatusFailed)
			continue
		}
		if err := p.setStatus(ctx, id, st.kind, types.StatusCompleted); err != nil {
			return
		}
		log.Printf("stub pipeline: %s ready for session %s", st.kind, id)
	}
}

// RegenerateSummary resets the summary artifact and produces a new one with
// the given preset after the usual stage delay.
func (p *Pipeline) RegenerateSummary(id, preset string) {
	go func() {
		ctx := context.Background()
		err := p.registry.Update(ctx, id, func(rec *Record) {
			rec.Preset = preset
			rec.Session.SummaryStatus = types.StatusQueued
			rec.SummaryKey = ""
		})
		if err != nil {
			log.Printf("stub pipeline: regenerate for %s: %v", id, err)
			return
		}
		if err := p.setStatus(ctx, id, types.KindSummary, types.StatusProcessing); err != nil {
			return
		}
		time.Sleep(stageDelay)

		rec, err := p.registry.Get(ctx, id)
		if err != nil || rec == nil {
			return
		}
		if err := p.produceSummary(ctx, rec); err != nil {
			_ = p.setStatus(ctx, id, types.KindSummary, types.StatusFailed)
			return
		}
		_ = p.setStatus(ctx, id, types.KindSummary, types.StatusCompleted)
		log.Printf("stub pipeline: regenerated summary for session %s (preset %s)", id, preset)
	}()
}

func (p *Pipeline) setStatus(ctx context.Context, id string, kind types.Kind, status types.Status) error {
	return p.registry.Update(ctx, id, func(rec *Record) {
		switch kind {
		case types.KindAudio:
			rec.Session.AudioStatus = status
		case types.KindTranscript:
			rec.Session.TranscriptStatus = status
		case types.KindEmotions:
			rec.Session.EmotionStatus = status
		case types.KindSummary:
			rec.Session.SummaryStatus = status
		}
	})
}

func (p *Pipeline) putJSON(ctx context.Context, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.blobs.Put(ctx, p.bucket, key, bytes.NewReader(data), "application/json")
}

// fabricated segment windows: two speakers alternating fixed-length turns.
func segmentWindows(duration float64, turns int) []float64 {
	step := duration / float64(turns)
	bounds := make([]float64, turns+1)
	for i := 0; i <= turns; i++ {
		bounds[i] = math.Round(step*float64(i)*100) / 100
	}
	return bounds
}

func (p *Pipeline) produceTranscript(ctx context.Context, rec *Record, duration float64) error {
	turns := len(sampleLines)
	bounds := segmentWindows(duration, turns)

	segments := make([]map[string]interface{}, 0, turns)
	for i, line := range sampleLines {
		segments = append(segments, map[string]interface{}{
			"text":       line,
			"writer":     fmt.Sprintf("%d", i%2+1),
			"start_time": bounds[i],
			"end_time":   bounds[i+1],
			"language":   "en",
		})
	}

	key := fmt.Sprintf("sessions/%s/transcript.json", rec.Session.ID)
	if err := p.putJSON(ctx, key, segments); err != nil {
		return err
	}
	return p.registry.Update(ctx, rec.Session.ID, func(r *Record) {
		r.TranscriptKey = key
		r.Speakers = types.SpeakerNames{
			Detected: []string{"1", "2"},
			Samples: map[string]string{
				"1": sampleLines[0],
				"2": sampleLines[1],
			},
			Map: r.Speakers.Map,
		}
		if r.Speakers.Map == nil {
			r.Speakers.Map = map[string]string{}
		}
	})
}

func (p *Pipeline) produceEmotions(ctx context.Context, rec *Record, duration float64) error {
	turns := len(sampleLines)
	bounds := segmentWindows(duration, turns)

	bundles := make([]map[string]interface{}, 0, turns)
	for i := 0; i < turns; i++ {
		scores := map[string]float64{}
		for j, label := range sampleEmotions {
			// Deterministic pseudo-variation keyed on turn and label index.
			scores[label] = math.Round(math.Abs(math.Sin(float64(i*7+j*3)))*100) / 100
		}
		bundles = append(bundles, map[string]interface{}{
			"who":        fmt.Sprintf("%d", i%2+1),
			"start_time": bounds[i],
			"end_time":   bounds[i+1],
			"mixed":      map[string]interface{}{"scores": scores},
		})
	}

	key := fmt.Sprintf("sessions/%s/emotions.json", rec.Session.ID)
	if err := p.putJSON(ctx, key, bundles); err != nil {
		return err
	}
	return p.registry.Update(ctx, rec.Session.ID, func(r *Record) {
		r.EmotionsKey = key
	})
}

func (p *Pipeline) produceSummary(ctx context.Context, rec *Record) error {
	preset := rec.Preset
	if preset == "" {
		preset = "brief"
	}
	summary := map[string]interface{}{
		"text": fmt.Sprintf("## Summary (%s)\n\nTwo participants discussed the release timeline for %q, "+
			"agreed the testing phase is compressed, and decided to add a reviewer and a dedicated "+
			"integration session.", preset, rec.Session.Title),
		"bullets": []string{
			"Release timeline revisited",
			"Extra reviewer to be assigned",
			"Dedicated integration session scheduled",
		},
		"per_speaker": map[string]string{
			"1": "Raised timeline and integration concerns.",
			"2": "Proposed staffing and scheduling remedies.",
		},
	}

	key := fmt.Sprintf("sessions/%s/summary.json", rec.Session.ID)
	if err := p.putJSON(ctx, key, summary); err != nil {
		return err
	}
	return p.registry.Update(ctx, rec.Session.ID, func(r *Record) {
		r.SummaryKey = key
	})
}
