package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kikuchi-mizuki/saiten/errors"
	"github.com/kikuchi-mizuki/saiten/logger"
	"github.com/kikuchi-mizuki/saiten/speech"
	"github.com/kikuchi-mizuki/saiten/version"
	"github.com/kikuchi-mizuki/saiten/voiceprint/store"
)

// SpeechService is the part of the speech pipeline the handlers need.
type SpeechService interface {
	ComputeVoiceprint(ctx context.Context, audioPath string) ([]float64, error)
	IdentifySpeakers(ctx context.Context, audioPath string) (*speech.Store, error)
	ExtractTargetSpeech(ctx context.Context, audioPath string) (*speech.Result, error)
}

// VoiceprintStore is the part of the enrollment store the handlers need.
type VoiceprintStore interface {
	Save(ctx context.Context, name string, vector []float64) (*store.Record, error)
	List(ctx context.Context) ([]store.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler holds the route handlers for the voiceprint and extraction API.
type Handler struct {
	svc   SpeechService
	store VoiceprintStore
	log   *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc SpeechService, vps VoiceprintStore, log *logger.Logger) *Handler {
	return &Handler{
		svc:   svc,
		store: vps,
		log:   log.WithComponent("api"),
	}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.healthz)

	vp := engine.Group("/voiceprint")
	vp.POST("/register", h.registerVoiceprint)
	vp.GET("/list", h.listVoiceprints)
	vp.DELETE("/:id", h.deleteVoiceprint)
	vp.POST("/identify-speakers", h.identifySpeakers)
	vp.POST("/extract-professor-speech", h.extractProfessorSpeech)
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok", "version": version.Get().Short()})
}

// registerVoiceprint enrolls a reference voiceprint from an uploaded audio
// file. The whole file is embedded and stored unit-normalized.
func (h *Handler) registerVoiceprint(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		RespondWithError(c, errors.InvalidInput("name is required"))
		return
	}

	audioPath, cleanup, err := h.saveUpload(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	defer cleanup()

	vector, err := h.svc.ComputeVoiceprint(c.Request.Context(), audioPath)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	rec, err := h.store.Save(c.Request.Context(), name, vector)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, rec)
}

func (h *Handler) listVoiceprints(c *gin.Context) {
	recs, err := h.store.List(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, recs)
}

func (h *Handler) deleteVoiceprint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondWithError(c, errors.InvalidInput("id must be a valid UUID"))
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

// identifySpeakersResponse is the diarize-only response body.
type identifySpeakersResponse struct {
	Statistics speech.Stats     `json:"statistics"`
	Segments   []speech.Segment `json:"segments"`
}

// identifySpeakers runs speaker-turn detection only and returns segments
// with per-speaker statistics.
func (h *Handler) identifySpeakers(c *gin.Context) {
	audioPath, cleanup, err := h.saveUpload(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	defer cleanup()

	segs, err := h.svc.IdentifySpeakers(c.Request.Context(), audioPath)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, identifySpeakersResponse{
		Statistics: segs.Stats(),
		Segments:   segs.Segments(),
	})
}

// extractProfessorSpeech runs the full extraction pipeline against the
// enrolled reference voiceprint.
func (h *Handler) extractProfessorSpeech(c *gin.Context) {
	audioPath, cleanup, err := h.saveUpload(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	defer cleanup()

	result, err := h.svc.ExtractTargetSpeech(c.Request.Context(), audioPath)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, result)
}

// saveUpload materializes the multipart "file" field to a temp file. The
// returned cleanup must be called on every exit path.
func (h *Handler) saveUpload(c *gin.Context) (string, func(), error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.InvalidInput("an audio file upload is required").WithCause(err)
	}

	ext := filepath.Ext(file.Filename)
	tmp, err := os.CreateTemp("", "saiten-upload-*"+ext)
	if err != nil {
		return "", nil, errors.Internal(err)
	}
	tmp.Close()

	path := tmp.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.log.Warn("temp upload not removed", logger.Fields(
				logger.FieldAudioPath, path,
				logger.FieldError, err.Error(),
			))
		}
	}

	if err := c.SaveUploadedFile(file, path); err != nil {
		cleanup()
		return "", nil, errors.AudioUnreadable(file.Filename, err)
	}
	return path, cleanup, nil
}
