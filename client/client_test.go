package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"talklens/config"
	"talklens/types"
)

// apiServer spins up a fake backend and a client pointed at it.
func apiServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := New(config.Config{APIBase: server.URL + "/api", Token: "test-token"})
	return server, c
}

func TestNoTokenShortCircuits(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	c := New(config.Config{APIBase: server.URL + "/api"})
	_, err := c.ListSessions(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if requests != 0 {
		t.Errorf("no request may be sent without a token, saw %d", requests)
	}
}

func TestListSessions(t *testing.T) {
	_, c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sessions": []map[string]interface{}{
				{"id": "s1", "title": "Standup", "transcript_status": "processing"},
			},
		})
	})

	sessions, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
	if sessions[0].TranscriptStatus != types.StatusProcessing {
		t.Errorf("status not decoded: %+v", sessions[0])
	}
}

func TestFetchArtifactEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		kind types.Kind
		path string
		body string
	}{
		{
			name: "transcript",
			kind: types.KindTranscript,
			path: "/api/sessions/s1/transcript",
			body: `{"transcript": {"status": "completed", "result": {"object_path": "p", "access_url": "http://x", "expires_at": ""}}}`,
		},
		{
			name: "emotions current key",
			kind: types.KindEmotions,
			path: "/api/sessions/s1/emotions",
			body: `{"emotions": {"status": "queued"}}`,
		},
		{
			name: "emotions legacy key",
			kind: types.KindEmotions,
			path: "/api/sessions/s1/emotions",
			body: `{"analyzed_emotions": {"status": "processing"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.path {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})

			artifact, err := c.FetchArtifact(context.Background(), "s1", tt.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !artifact.Status.Known() {
				t.Errorf("status not decoded: %+v", artifact)
			}
		})
	}
}

func TestCreateSessionValidation(t *testing.T) {
	c := New(config.Config{APIBase: "http://localhost:0/api", Token: "test-token"})

	tests := []struct {
		name  string
		req   UploadRequest
		field string
	}{
		{"missing title", UploadRequest{AudioPath: "/tmp/a.wav"}, "title"},
		{"missing file", UploadRequest{Title: "Standup"}, "file"},
		{"unreadable file", UploadRequest{Title: "Standup", AudioPath: "/does/not/exist.wav"}, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateSession(context.Background(), tt.req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, vErr.Field)
			}
		})
	}
}

func TestCreateSessionUploadsMultipart(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "meeting.wav")
	if err := os.WriteFile(audioPath, []byte("RIFFfake"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
			return
		}
		if got := r.FormValue("title"); got != "Weekly sync" {
			t.Errorf("title = %q", got)
		}
		if got := r.FormValue("preset"); got != "detailed" {
			t.Errorf("preset = %q", got)
		}
		if got := r.FormValue("duration"); got != "312.50" {
			t.Errorf("duration = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part missing: %v", err)
			return
		}
		file.Close()
		if header.Filename != "meeting.wav" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"session": map[string]interface{}{"id": "new-id", "title": "Weekly sync"},
		})
	})

	session, err := c.CreateSession(context.Background(), UploadRequest{
		Title:     "Weekly sync",
		AudioPath: audioPath,
		Preset:    "detailed",
		Duration:  312.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != "new-id" {
		t.Errorf("session not decoded: %+v", session)
	}
}

func TestDeleteSessionSendsBlobFlag(t *testing.T) {
	var gotQuery string
	_, c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
	})

	if err := c.DeleteSession(context.Background(), "s1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "delete_blobs=true" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestDeleteSessionsBulk(t *testing.T) {
	_, c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/sessions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			SessionIDs  []string `json:"session_ids"`
			DeleteBlobs bool     `json:"delete_blobs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad body: %v", err)
			return
		}
		if len(req.SessionIDs) != 2 || !req.DeleteBlobs {
			t.Errorf("unexpected payload: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"deleted": []string{"s1"},
			"failed":  map[string]string{"s2": "not found"},
		})
	})

	result, err := c.DeleteSessions(context.Background(), []string{"s1", "s2"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Deleted) != 1 || result.Failed["s2"] != "not found" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestRegenerateSummary(t *testing.T) {
	var gotPath, gotPreset string
	_, c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req struct {
			Preset string `json:"preset"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotPreset = req.Preset
		w.WriteHeader(http.StatusAccepted)
	})

	if err := c.RegenerateSummary(context.Background(), "s1", "actions"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/sessions/s1/summary/generate" || gotPreset != "actions" {
		t.Errorf("got %s preset %q", gotPath, gotPreset)
	}
}

func TestSpeakersRoundTrip(t *testing.T) {
	_, c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"detected": []string{"1", "2"},
				"map":      map[string]string{"1": "Alice"},
			})
		case http.MethodPut:
			var req struct {
				Map map[string]string `json:"map"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad body: %v", err)
				return
			}
			if req.Map["2"] != "Bob" {
				t.Errorf("unexpected map: %+v", req.Map)
			}
		}
	})

	names, err := c.Speakers(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names.Detected) != 2 || names.Map["1"] != "Alice" {
		t.Errorf("unexpected names: %+v", names)
	}

	if err := c.SetSpeakers(context.Background(), "s1", map[string]string{"1": "Alice", "2": "Bob"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
