package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"talklens/config"
	"talklens/types"
)

// ValidationError reports a client-side form problem found before any network
// call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type sessionListResponse struct {
	Sessions []types.Session `json:"sessions"`
}

type sessionResponse struct {
	Session types.Session `json:"session"`
}

// ListSessions fetches the session summaries for the current user.
func (c *Client) ListSessions(ctx context.Context) ([]types.Session, error) {
	var resp sessionListResponse
	if err := c.doJSONRequest(ctx, http.MethodGet, "/sessions", nil, &resp); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return resp.Sessions, nil
}

// GetSession fetches one session's metadata and per-artifact status fields.
func (c *Client) GetSession(ctx context.Context, id string) (*types.Session, error) {
	var resp sessionResponse
	if err := c.doJSONRequest(ctx, http.MethodGet, "/sessions/"+id, nil, &resp); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &resp.Session, nil
}

// UploadRequest describes a new session upload. Duration, when known from a
// local probe, is passed along so the backend can sanity-check its own
// decoding.
type UploadRequest struct {
	Title     string
	AudioPath string
	Preset    string
	Duration  float64
}

// CreateSession validates and uploads a new recording as multipart form data.
// Validation failures return a *ValidationError without touching the network.
func (c *Client) CreateSession(ctx context.Context, req UploadRequest) (*types.Session, error) {
	if req.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if req.AudioPath == "" {
		return nil, &ValidationError{Field: "file", Message: "an audio file is required"}
	}

	fd, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: err.Error()}
	}
	defer fd.Close()

	if fi, err := fd.Stat(); err == nil && fi.Size() > config.MaxUploadBytes {
		return nil, &ValidationError{Field: "file", Message: "audio file exceeds the upload size limit"}
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(fw, fd); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if err = w.WriteField("title", req.Title); err != nil {
		return nil, err
	}
	if req.Preset != "" {
		if err = w.WriteField("preset", req.Preset); err != nil {
			return nil, err
		}
	}
	if req.Duration > 0 {
		if err = w.WriteField("duration", strconv.FormatFloat(req.Duration, 'f', 2, 64)); err != nil {
			return nil, err
		}
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := c.doMultipart(ctx, "/sessions", w.FormDataContentType(), &body, &resp); err != nil {
		return nil, fmt.Errorf("upload session: %w", err)
	}
	return &resp.Session, nil
}

// DeleteSession deletes one session. When deleteBlobs is true the backing
// artifact blobs are purged as well.
func (c *Client) DeleteSession(ctx context.Context, id string, deleteBlobs bool) error {
	path := fmt.Sprintf("/sessions/%s?delete_blobs=%t", id, deleteBlobs)
	if err := c.doJSONRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

type bulkDeleteRequest struct {
	SessionIDs  []string `json:"session_ids"`
	DeleteBlobs bool     `json:"delete_blobs"`
}

// DeleteSessions bulk-deletes sessions. The backend treats this as
// best-effort per id, not a transaction; the result separates deleted ids
// from per-id failures.
func (c *Client) DeleteSessions(ctx context.Context, ids []string, deleteBlobs bool) (*types.DeleteResult, error) {
	var resp types.DeleteResult
	req := bulkDeleteRequest{SessionIDs: ids, DeleteBlobs: deleteBlobs}
	if err := c.doJSONRequest(ctx, http.MethodDelete, "/sessions", req, &resp); err != nil {
		return nil, fmt.Errorf("bulk delete: %w", err)
	}
	return &resp, nil
}
