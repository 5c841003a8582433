package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"talklens/config"
	"talklens/mapper"
	"talklens/types"
)

// NotReadyError means Resolve was invoked for an artifact that is not
// completed or has no access grant. This is a caller contract violation, not
// a network failure, and should be prevented by the store.
type NotReadyError struct {
	Kind   types.Kind
	Status types.Status
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s artifact is not ready (status %q)", e.Kind, e.Status)
}

// ExpiredError means the artifact's access URL is past expires_at. The caller
// should re-fetch the descriptor for a fresh URL instead of retrying the dead
// link; Resolve never attempts the fetch in this case.
type ExpiredError struct {
	Kind      types.Kind
	ExpiresAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s access URL expired at %s", e.Kind, e.ExpiresAt.Format(time.RFC3339))
}

// FetchError is a non-2xx response from the access URL.
type FetchError struct {
	Kind   types.Kind
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s content returned HTTP %d", e.Kind, e.Status)
}

// ParseError means the content behind the access URL did not match the
// expected shape for the artifact kind.
type ParseError struct {
	Kind types.Kind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s content: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Content is the resolved payload of a completed artifact. Exactly one field
// besides Kind is populated, matching the kind. Audio is never downloaded;
// only its streaming URL is carried through.
type Content struct {
	Kind       types.Kind
	AudioURL   string
	Transcript []types.TranscriptSegment
	Emotions   []types.EmotionBundle
	Summary    *types.Summary
}

// Resolve fetches and parses the payload behind a completed artifact's access
// URL. The URL embeds its own authorization, so the request carries no
// credentials. Fails with NotReadyError, ExpiredError, FetchError or
// ParseError; all are display-level conditions, distinct from a backend
// status of "failed".
func (c *Client) Resolve(ctx context.Context, kind types.Kind, artifact *types.Artifact) (*Content, error) {
	if artifact == nil || artifact.Status != types.StatusCompleted || artifact.Result == nil {
		status := types.Status("")
		if artifact != nil {
			status = artifact.Status
		}
		return nil, &NotReadyError{Kind: kind, Status: status}
	}

	access := artifact.Result
	if access.ExpiresAt != "" {
		if expires, err := time.Parse(time.RFC3339, access.ExpiresAt); err == nil && time.Now().After(expires) {
			return nil, &ExpiredError{Kind: kind, ExpiresAt: expires}
		}
	}

	url := access.URL()
	if url == "" {
		return nil, &NotReadyError{Kind: kind, Status: artifact.Status}
	}

	// Audio streams straight from the signed URL; only the reference is kept.
	if kind == types.KindAudio {
		return &Content{Kind: kind, AudioURL: url}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create content request: %w", err)
	}

	resp, err := c.contentClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s content: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Kind: kind, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s content: %w", kind, err)
	}

	content := &Content{Kind: kind}
	switch kind {
	case types.KindTranscript:
		segments, err := mapper.Transcript(body)
		if err != nil {
			return nil, &ParseError{Kind: kind, Err: err}
		}
		content.Transcript = segments
	case types.KindEmotions:
		bundles, err := mapper.Emotions(body)
		if err != nil {
			return nil, &ParseError{Kind: kind, Err: err}
		}
		content.Emotions = bundles
	case types.KindSummary:
		summary, err := mapper.Summary(body)
		if err != nil {
			return nil, &ParseError{Kind: kind, Err: err}
		}
		content.Summary = &summary
	default:
		return nil, fmt.Errorf("artifact kind %q has no content payload", kind)
	}
	return content, nil
}
