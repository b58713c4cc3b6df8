package http

import (
	"encoding/base64"
	"errors"
	"math"
	"net/http"
	"strconv"

	"custodia/internal/domain"
	"custodia/internal/redact"
	"custodia/internal/summarize"
	"custodia/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ingestRequest struct {
	ContentBase64 string `json:"content_base64" binding:"required"`
	Filename      string `json:"filename"`
	CaseNumber    string `json:"case_number"`
	Kind          string `json:"kind"`
	Detail        string `json:"detail"`
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: "content_base64 is not valid base64"})
		return
	}
	artifact, err := s.tracker.RecordIngest(c.Request.Context(), usecase.IngestInput{
		Actor:      currentActor(c),
		Content:    content,
		Kind:       domain.ArtifactKind(req.Kind),
		Filename:   req.Filename,
		CaseNumber: req.CaseNumber,
		Detail:     req.Detail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, artifact)
}

func (s *Server) handleAccess(c *gin.Context) {
	id := c.Param("id")
	purpose := c.DefaultQuery("purpose", "view")
	if _, err := s.tracker.RecordAccess(c.Request.Context(), currentActor(c), id, purpose); err != nil {
		respondError(c, err)
		return
	}
	if c.Query("include_content") == "true" {
		artifact, content, err := s.tracker.LoadContent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"artifact":       artifact,
			"content_base64": base64.StdEncoding.EncodeToString(content),
		})
		return
	}
	artifact, err := s.tracker.Store.GetArtifact(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artifact)
}

func (s *Server) handleHistory(c *gin.Context) {
	events, err := s.tracker.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type redactRequest struct {
	Ranges    []redact.Span `json:"ranges"`
	DetectPII bool          `json:"detect_pii"`
}

func (s *Server) handleRedact(c *gin.Context) {
	var req redactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	_, content, err := s.tracker.LoadContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	spans := req.Ranges
	if req.DetectPII {
		spans = append(spans, redact.DetectPII(content)...)
	}
	redacted, applied, err := s.redactor.Apply(content, spans)
	if err != nil {
		respondError(c, err)
		return
	}
	detail, err := redact.Detail(applied)
	if err != nil {
		respondError(c, err)
		return
	}
	artifact, err := s.tracker.RecordTransformation(c.Request.Context(), usecase.TransformInput{
		Actor:      currentActor(c),
		Kind:       domain.EventRedact,
		SourceID:   c.Param("id"),
		NewContent: redacted,
		Detail:     detail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, artifact)
}

type transcribeRequest struct {
	Transcript string `json:"transcript" binding:"required"`
	Detail     string `json:"detail"`
}

// handleTranscribe attaches an externally produced transcript as a new
// artifact version; the transcription service itself is out of process.
func (s *Server) handleTranscribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	detail := req.Detail
	if detail == "" {
		detail = `{"source":"external transcription"}`
	}
	artifact, err := s.tracker.RecordTransformation(c.Request.Context(), usecase.TransformInput{
		Actor:      currentActor(c),
		Kind:       domain.EventTranscribe,
		SourceID:   c.Param("id"),
		NewContent: []byte(req.Transcript),
		Detail:     detail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, artifact)
}

type summarizeRequest struct {
	SummaryType string `json:"summary_type"`
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	kind := summarize.Kind(req.SummaryType)
	if kind == "" {
		kind = summarize.KindBrief
	}
	_, content, err := s.tracker.LoadContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := summarize.Generate(string(content), kind)
	if err != nil {
		if errors.Is(err, summarize.ErrTooShort) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Code: "TOO_SHORT", Message: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	artifact, err := s.tracker.RecordTransformation(c.Request.Context(), usecase.TransformInput{
		Actor:      currentActor(c),
		Kind:       domain.EventSummarize,
		SourceID:   c.Param("id"),
		NewContent: []byte(summary),
		Detail:     `{"summary_type":"` + string(kind) + `"}`,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, artifact)
}

type exportRequest struct {
	Destination string `json:"destination" binding:"required"`
}

func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	id := c.Param("id")
	artifact, content, err := s.tracker.LoadContent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	event, err := s.tracker.RecordExport(c.Request.Context(), currentActor(c), id, req.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"artifact":       artifact,
		"event":          event,
		"content_base64": base64.StdEncoding.EncodeToString(content),
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	reason := c.DefaultQuery("reason", "")
	event, err := s.tracker.RecordDeletion(c.Request.Context(), currentActor(c), c.Param("id"), reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (s *Server) handleLedgerRange(c *gin.Context) {
	from, err := parseSeq(c.DefaultQuery("from", "0"), 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: "invalid from"})
		return
	}
	to, err := parseSeq(c.DefaultQuery("to", ""), math.MaxUint64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: "invalid to"})
		return
	}
	events, err := s.ledger.ReadRange(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) handleVerifyLedger(c *gin.Context) {
	report, err := s.verifier.VerifyLedger(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleVerifyArtifact(c *gin.Context) {
	report, err := s.verifier.VerifyArtifact(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func parseSeq(value string, def uint64) (uint64, error) {
	if value == "" {
		return def, nil
	}
	return strconv.ParseUint(value, 10, 64)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrArtifactDeleted):
		c.JSON(http.StatusGone, ErrorResponse{Code: "DELETED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidRedactionRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_RANGE", Message: err.Error()})
	case errors.Is(err, domain.ErrContentTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Code: "TOO_LARGE", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrentModification):
		c.JSON(http.StatusConflict, ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: err.Error()})
	case errors.Is(err, domain.ErrIntegrityViolation):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Code: "INTEGRITY_VIOLATION", Message: err.Error()})
	case errors.Is(err, domain.ErrLedgerCorrupt), errors.Is(err, domain.ErrLedgerWriteConflict):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: "LEDGER_UNAVAILABLE", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
