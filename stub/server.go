package stub

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talklens/types"
)

// presignTTL is how long issued access URLs stay valid.
const presignTTL = 15 * time.Minute

var presets = []types.SummaryPreset{
	{Key: "brief", Label: "Brief overview"},
	{Key: "detailed", Label: "Detailed minutes"},
	{Key: "actions", Label: "Action items"},
}

// Server is the stub backend HTTP layer.
type Server struct {
	registry *Registry
	blobs    Blobs
	bucket   string
	pipeline *Pipeline
}

// NewServer creates the stub server.
func NewServer(registry *Registry, blobs Blobs, bucket string) *Server {
	return &Server{
		registry: registry,
		blobs:    blobs,
		bucket:   bucket,
		pipeline: NewPipeline(registry, blobs, bucket),
	}
}

// NewRouter constructs a Gin engine with registered routes.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	api := r.Group("/api", bearerAuth())
	api.GET("/sessions", s.handleList)
	api.POST("/sessions", s.handleUpload)
	api.DELETE("/sessions", s.handleBulkDelete)
	api.GET("/sessions/summary/presets", s.handlePresets)
	api.GET("/sessions/:id", s.handleGet)
	api.DELETE("/sessions/:id", s.handleDelete)
	api.GET("/sessions/:id/audio", s.artifactHandler(types.KindAudio))
	api.GET("/sessions/:id/transcript", s.artifactHandler(types.KindTranscript))
	api.GET("/sessions/:id/emotions", s.artifactHandler(types.KindEmotions))
	api.GET("/sessions/:id/summary", s.artifactHandler(types.KindSummary))
	api.POST("/sessions/:id/summary/generate", s.handleRegenerate)
	api.GET("/sessions/:id/speakers", s.handleGetSpeakers)
	api.PUT("/sessions/:id/speakers", s.handlePutSpeakers)
	return r
}

// bearerAuth enforces a bearer token on every first-class API call. When
// STUB_TOKEN is set the token must match it; otherwise any non-empty token
// passes, which is enough for local development.
func bearerAuth() gin.HandlerFunc {
	expected := os.Getenv("STUB_TOKEN")
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if expected != "" && token != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleList(c *gin.Context) {
	records, err := s.registry.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sessions := make([]types.Session, 0, len(records))
	for _, rec := range records {
		sessions = append(sessions, rec.Session)
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (s *Server) handleGet(c *gin.Context) {
	rec, err := s.lookup(c)
	if rec == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": rec.Session})
}

func (s *Server) handleUpload(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an audio file is required"})
		return
	}

	id := uuid.NewString()
	audioKey := fmt.Sprintf("sessions/%s/audio%s", id, filepath.Ext(file.Filename))

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	if err := s.blobs.Put(c.Request.Context(), s.bucket, audioKey, src, "application/octet-stream"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("store audio: %v", err)})
		return
	}

	rec := &Record{
		Session: types.Session{
			ID:               id,
			Title:            title,
			CreatedAt:        time.Now().UTC().Format(time.RFC3339),
			Participants:     []string{"Speaker 1", "Speaker 2"},
			Language:         "en",
			SessionStatus:    types.StatusCompleted,
			AudioStatus:      types.StatusCompleted,
			TranscriptStatus: types.StatusQueued,
			EmotionStatus:    types.StatusQueued,
			SummaryStatus:    types.StatusQueued,
		},
		Preset:   c.DefaultPostForm("preset", "brief"),
		AudioKey: audioKey,
	}
	// A fixed fallback duration keeps fabricated timestamps sane when the
	// uploader did not probe the file.
	duration := 300.0
	if v, ok := parseFloat(c.PostForm("duration")); ok && v > 0 {
		duration = v
	}
	rec.Session.Duration = math.Round(duration*100) / 100

	if err := s.registry.Save(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.pipeline.Kick(id, duration)
	c.JSON(http.StatusCreated, gin.H{"session": rec.Session})
}

func (s *Server) handleDelete(c *gin.Context) {
	rec, err := s.lookup(c)
	if rec == nil || err != nil {
		return
	}
	deleteBlobs := c.Query("delete_blobs") == "true"
	if err := s.deleteOne(c, rec, deleteBlobs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": rec.Session.ID})
}

type bulkDeletePayload struct {
	SessionIDs  []string `json:"session_ids"`
	DeleteBlobs bool     `json:"delete_blobs"`
}

// handleBulkDelete deletes best-effort per id, reporting which ids succeeded
// and which failed. There is no transactional guarantee.
func (s *Server) handleBulkDelete(c *gin.Context) {
	var payload bulkDeletePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := types.DeleteResult{Deleted: []string{}, Failed: map[string]string{}}
	for _, id := range payload.SessionIDs {
		rec, err := s.registry.Get(c.Request.Context(), id)
		if err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		if rec == nil {
			result.Failed[id] = "not found"
			continue
		}
		if err := s.deleteOne(c, rec, payload.DeleteBlobs); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) deleteOne(c *gin.Context, rec *Record, deleteBlobs bool) error {
	ctx := c.Request.Context()
	if deleteBlobs {
		for _, key := range []string{rec.AudioKey, rec.TranscriptKey, rec.EmotionsKey, rec.SummaryKey} {
			if key == "" {
				continue
			}
			if err := s.blobs.Delete(ctx, s.bucket, key); err != nil {
				return fmt.Errorf("delete blob %s: %w", key, err)
			}
		}
	}
	return s.registry.Delete(ctx, rec.Session.ID)
}

// artifactHandler serves the {status, result?} descriptor for one artifact
// kind, issuing a fresh presigned URL when the artifact is completed.
func (s *Server) artifactHandler(kind types.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := s.lookup(c)
		if rec == nil || err != nil {
			return
		}

		status := rec.Session.StatusFor(kind)
		key := ""
		switch kind {
		case types.KindAudio:
			key = rec.AudioKey
		case types.KindTranscript:
			key = rec.TranscriptKey
		case types.KindEmotions:
			key = rec.EmotionsKey
		case types.KindSummary:
			key = rec.SummaryKey
		}

		artifact := types.Artifact{Status: status}
		if status == types.StatusCompleted && key != "" {
			url, err := s.blobs.PresignGet(c.Request.Context(), s.bucket, key, presignTTL)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("presign: %v", err)})
				return
			}
			artifact.Result = &types.ArtifactAccess{
				ObjectPath: key,
				AccessURL:  url,
				ExpiresAt:  time.Now().Add(presignTTL).UTC().Format(time.RFC3339),
			}
		}
		c.JSON(http.StatusOK, gin.H{string(kind): artifact})
	}
}

type regeneratePayload struct {
	Preset string `json:"preset"`
}

func (s *Server) handleRegenerate(c *gin.Context) {
	rec, err := s.lookup(c)
	if rec == nil || err != nil {
		return
	}
	var payload regeneratePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.Preset == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preset is required"})
		return
	}
	s.pipeline.RegenerateSummary(rec.Session.ID, payload.Preset)
	c.JSON(http.StatusAccepted, gin.H{"status": string(types.StatusQueued)})
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

func (s *Server) handleGetSpeakers(c *gin.Context) {
	rec, err := s.lookup(c)
	if rec == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, rec.Speakers)
}

type speakersPayload struct {
	Map map[string]string `json:"map"`
}

func (s *Server) handlePutSpeakers(c *gin.Context) {
	rec, err := s.lookup(c)
	if rec == nil || err != nil {
		return
	}
	var payload speakersPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = s.registry.Update(c.Request.Context(), rec.Session.ID, func(r *Record) {
		r.Speakers.Map = payload.Map
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"map": payload.Map})
}

// lookup resolves the :id parameter to a record, writing the error response
// itself when the session is missing.
func (s *Server) lookup(c *gin.Context) (*Record, error) {
	id := c.Param("id")
	rec, err := s.registry.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, err
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, nil
	}
	return rec, nil
}

func parseFloat(s string) (float64, bool) {
	var v float64
	if s == "" {
		return 0, false
	}
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		return 0, false
	}
	return v, true
}
