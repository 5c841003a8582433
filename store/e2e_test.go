package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"talklens/client"
	"talklens/config"
	"talklens/types"
)

// stubAPI is a minimal HTTP backend: descriptor endpoints under /api plus a
// blob endpoint standing in for the signed content URLs.
type stubAPI struct {
	mu       sync.Mutex
	statuses map[types.Kind]types.Status
	payloads map[types.Kind]string
	server   *httptest.Server
}

func newStubAPI(t *testing.T) *stubAPI {
	t.Helper()
	api := &stubAPI{
		statuses: map[types.Kind]types.Status{
			types.KindAudio:      types.StatusQueued,
			types.KindTranscript: types.StatusQueued,
			types.KindEmotions:   types.StatusQueued,
			types.KindSummary:    types.StatusQueued,
		},
		payloads: map[types.Kind]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"session": map[string]interface{}{
				"id": "s1", "title": "Standup", "duration": 300.0,
				"session_status": "completed",
			},
		})
	})
	for _, kind := range []types.Kind{types.KindAudio, types.KindTranscript, types.KindEmotions, types.KindSummary} {
		kind := kind
		mux.HandleFunc("/api/sessions/s1/"+string(kind), func(w http.ResponseWriter, r *http.Request) {
			api.mu.Lock()
			status := api.statuses[kind]
			api.mu.Unlock()

			artifact := map[string]interface{}{"status": string(status)}
			if status == types.StatusCompleted {
				artifact["result"] = map[string]interface{}{
					"object_path": "blobs/" + string(kind),
					"access_url":  api.server.URL + "/blobs/" + string(kind),
					"expires_at":  time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{string(kind): artifact})
		})
	}
	mux.HandleFunc("/api/sessions/s1/speakers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"detected": []string{"1", "2"},
			"map":      map[string]string{},
		})
	})
	mux.HandleFunc("/blobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("blob fetch must not carry credentials")
		}
		kind := types.Kind(r.URL.Path[len("/blobs/"):])
		api.mu.Lock()
		payload := api.payloads[kind]
		api.mu.Unlock()
		w.Write([]byte(payload))
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (a *stubAPI) complete(kind types.Kind, payload string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statuses[kind] = types.StatusCompleted
	a.payloads[kind] = payload
}

func TestStoreAgainstHTTPBackend(t *testing.T) {
	api := newStubAPI(t)
	api.complete(types.KindAudio, "")

	c := client.New(config.Config{APIBase: api.server.URL + "/api", Token: "test-token"})
	sched := &manualScheduler{}
	st := New(c, WithScheduler(sched))

	st.Watch(context.Background(), "s1")

	waitFor(t, "metadata over HTTP", func() bool {
		sess := st.Session("s1")
		return sess != nil && sess.Title == "Standup"
	})
	waitFor(t, "audio url", func() bool {
		snap := st.Artifact("s1", types.KindAudio)
		return snap.Content != nil && snap.Content.AudioURL != ""
	})

	// Artifacts finish out of order: summary first, then transcript.
	api.complete(types.KindSummary, `{"text": "All agreed.", "bullets": ["ship it"]}`)
	sched.Tick()
	waitFor(t, "summary before transcript", func() bool {
		snap := st.Artifact("s1", types.KindSummary)
		return snap.Content != nil && snap.Content.Summary.Text == "All agreed."
	})
	if snap := st.Artifact("s1", types.KindTranscript); snap.Status.Terminal() {
		t.Fatalf("transcript should still be pending, got %s", snap.Status)
	}

	api.complete(types.KindTranscript, `[{"text": "hello", "writer": 1, "t0": 0, "t1": 3}]`)
	sched.Tick()
	waitFor(t, "transcript content", func() bool {
		snap := st.Artifact("s1", types.KindTranscript)
		return snap.Content != nil && len(snap.Content.Transcript) == 1
	})
	waitFor(t, "speaker names after transcript", func() bool {
		names := st.SpeakerNames("s1")
		return names != nil && len(names.Detected) == 2
	})

	api.complete(types.KindEmotions, `[{"who": 1, "t0": 0, "t1": 3, "mixed": {"scores": {"joy": 0.9}}}]`)
	sched.Tick()
	waitFor(t, "emotion bundles", func() bool {
		snap := st.Artifact("s1", types.KindEmotions)
		return snap.Content != nil && len(snap.Content.Emotions) == 1
	})

	snap := st.Artifact("s1", types.KindEmotions)
	if snap.Content.Emotions[0].PreferredScores()["joy"] != 0.9 {
		t.Errorf("emotion payload mangled in transit: %+v", snap.Content.Emotions[0])
	}
}
