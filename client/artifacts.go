package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"talklens/types"
)

// The backend wraps each artifact descriptor in a per-kind envelope, e.g.
// {"audio": {...}} or {"transcript": {...}}. Emotions have shipped under two
// keys across backend iterations.
var envelopeKeys = map[types.Kind][]string{
	types.KindAudio:      {"audio"},
	types.KindTranscript: {"transcript"},
	types.KindEmotions:   {"emotions", "analyzed_emotions"},
	types.KindSummary:    {"summary"},
}

// FetchArtifact fetches the status descriptor for one of a session's derived
// artifacts (audio, transcript, emotions, summary). Session metadata itself
// is fetched with GetSession.
func (c *Client) FetchArtifact(ctx context.Context, sessionID string, kind types.Kind) (*types.Artifact, error) {
	keys, ok := envelopeKeys[kind]
	if !ok {
		return nil, fmt.Errorf("artifact kind %q has no descriptor endpoint", kind)
	}

	path := fmt.Sprintf("/sessions/%s/%s", sessionID, keys[0])
	var envelope map[string]json.RawMessage
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch %s descriptor: %w", kind, err)
	}

	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var artifact types.Artifact
		if err := json.Unmarshal(raw, &artifact); err != nil {
			return nil, fmt.Errorf("decode %s descriptor: %w", kind, err)
		}
		return &artifact, nil
	}
	return nil, fmt.Errorf("descriptor response missing %q envelope", keys[0])
}

type regenerateRequest struct {
	Preset string `json:"preset"`
}

// RegenerateSummary asks the backend to regenerate the session summary with a
// new preset. On success the summary artifact restarts its lifecycle; callers
// must treat any previously resolved summary as stale.
func (c *Client) RegenerateSummary(ctx context.Context, sessionID, preset string) error {
	path := fmt.Sprintf("/sessions/%s/summary/generate", sessionID)
	if err := c.doJSONRequest(ctx, http.MethodPost, path, regenerateRequest{Preset: preset}, nil); err != nil {
		return fmt.Errorf("regenerate summary: %w", err)
	}
	return nil
}

// SummaryPresets lists the available summary generation presets.
func (c *Client) SummaryPresets(ctx context.Context) ([]types.SummaryPreset, error) {
	var resp struct {
		Presets []types.SummaryPreset `json:"presets"`
	}
	if err := c.doJSONRequest(ctx, http.MethodGet, "/sessions/summary/presets", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch presets: %w", err)
	}
	return resp.Presets, nil
}

// Speakers fetches the detected speakers and custom naming map for a session.
func (c *Client) Speakers(ctx context.Context, sessionID string) (*types.SpeakerNames, error) {
	var names types.SpeakerNames
	path := fmt.Sprintf("/sessions/%s/speakers", sessionID)
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, &names); err != nil {
		return nil, fmt.Errorf("fetch speakers: %w", err)
	}
	return &names, nil
}

type speakersUpdateRequest struct {
	Map map[string]string `json:"map"`
}

// SetSpeakers stores custom display names for a session's speakers. The
// persisted transcript is untouched; renaming only affects display.
func (c *Client) SetSpeakers(ctx context.Context, sessionID string, nameMap map[string]string) error {
	path := fmt.Sprintf("/sessions/%s/speakers", sessionID)
	if err := c.doJSONRequest(ctx, http.MethodPut, path, speakersUpdateRequest{Map: nameMap}, nil); err != nil {
		return fmt.Errorf("update speakers: %w", err)
	}
	return nil
}
