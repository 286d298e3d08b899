package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
	"github.com/Conceptual-Machines/qrious/internal/generation"
	"github.com/Conceptual-Machines/qrious/internal/logger"
	"github.com/Conceptual-Machines/qrious/internal/payload"
	"github.com/gin-gonic/gin"
)

type GenerationHandler struct {
	ctrl *generation.Controller
}

func NewGenerationHandler(ctrl *generation.Controller) *GenerationHandler {
	return &GenerationHandler{ctrl: ctrl}
}

// ContentRequest is the JSON form of a payload.Request
type ContentRequest struct {
	Kind   string            `json:"kind" binding:"required"`
	Fields map[string]string `json:"fields"`
}

// Request converts the body into a payload.Request
func (r ContentRequest) Request() (payload.Request, error) {
	kind, err := payload.ParseKind(r.Kind)
	if err != nil {
		return nil, err
	}
	return payload.FromValues(kind, r.Fields)
}

type PayloadResponse struct {
	Kind    string `json:"kind"`
	Payload string `json:"payload"`
}

type SnapshotResponse struct {
	Phase     string     `json:"phase"`
	Token     uint64     `json:"token"`
	Kind      string     `json:"kind"`
	Payload   string     `json:"payload"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
	Image     string     `json:"image,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NewSnapshotResponse converts a controller snapshot for JSON output
func NewSnapshotResponse(s generation.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Phase:   s.Phase.String(),
		Token:   s.Token,
		Payload: s.Payload(),
		Image:   s.Result.DataURI(),
		Error:   s.Reason,
	}
	if s.Request != nil {
		resp.Kind = string(s.Request.Kind())
	}
	if !s.Started.IsZero() {
		started := s.Started.UTC()
		resp.StartedAt = &started
	}
	if !s.Settled.IsZero() {
		settled := s.Settled.UTC()
		resp.SettledAt = &settled
	}
	return resp
}

// Preview returns the templated payload without generating
func (h *GenerationHandler) Preview(c *gin.Context) {
	var body ContentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := body.Request()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PayloadResponse{Kind: string(req.Kind()), Payload: payload.Template(req)})
}

// Generate starts a generation and returns the pending snapshot
func (h *GenerationHandler) Generate(c *gin.Context) {
	var body ContentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := body.Request()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ctrl.RequestGeneration(c.Request.Context(), req); err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.UserMessage(), "field": verr.Field})
			return
		}
		logger.Error("Generation request failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": generation.UserMessage(err)})
		return
	}

	c.JSON(http.StatusAccepted, NewSnapshotResponse(h.ctrl.Snapshot()))
}

// Current returns the generation state. With ?wait=<duration> and a pending
// state it blocks until the state changes or the wait elapses.
func (h *GenerationHandler) Current(c *gin.Context) {
	wait, err := parseWait(c.Query("wait"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.ctrl.Snapshot()
	if wait > 0 && snap.Phase == generation.PhasePending {
		snap = h.waitForChange(c.Request.Context(), snap.Token, wait)
	}

	c.JSON(http.StatusOK, NewSnapshotResponse(snap))
}

func (h *GenerationHandler) waitForChange(ctx context.Context, token uint64, wait time.Duration) generation.Snapshot {
	changes, unsubscribe := h.ctrl.Subscribe()
	defer unsubscribe()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		snap := h.ctrl.Snapshot()
		if snap.Phase != generation.PhasePending || snap.Token != token {
			return snap
		}
		select {
		case <-changes:
		case <-timer.C:
			return h.ctrl.Snapshot()
		case <-ctx.Done():
			return h.ctrl.Snapshot()
		}
	}
}

func parseWait(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, fmt.Errorf("invalid wait %q", raw)
		}
		d = time.Duration(secs) * time.Second
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid wait %q", raw)
	}
	if d > maxLongPoll {
		d = maxLongPoll
	}
	return d, nil
}

// Export streams the current code as png or svg
func (h *GenerationHandler) Export(c *gin.Context) {
	format, err := encoder.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.ctrl.ExportCurrent(c.Request.Context(), format)
	if err != nil {
		if errors.Is(err, generation.ErrNothingToExport) {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": generation.UserMessage(err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exp.Filename))
	c.Data(http.StatusOK, exp.MIME, exp.Data)
}

// Copy asks the browser to copy the templated payload. An optional body
// updates the current request first.
func (h *GenerationHandler) Copy(c *gin.Context) {
	if c.Request.ContentLength > 0 {
		var body ContentRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req, err := body.Request()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.ctrl.SetRequest(req)
	}

	text, err := h.ctrl.CopyCurrent(c.Request.Context(), BrowserClipboard(c))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": generation.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, PayloadResponse{Kind: string(h.ctrl.Current().Kind()), Payload: text})
}

// BrowserClipboard hands the text to the page through an HX-Trigger
// header; the page script performs the actual clipboard write. The header
// size limit only matters to the page: API clients read the text from the
// response body, so for them an oversized payload just skips the header.
func BrowserClipboard(c *gin.Context) generation.Clipboard {
	return generation.ClipboardFunc(func(_ context.Context, text string) error {
		if len(text) > maxClipboardBytes {
			if isHTMX(c) {
				return fmt.Errorf("payload of %d bytes exceeds clipboard limit", len(text))
			}
			return nil
		}
		trigger, err := json.Marshal(map[string]interface{}{
			clipboardEvent: map[string]string{"text": text},
			notifyEvent:    true,
		})
		if err != nil {
			return err
		}
		c.Header("HX-Trigger", string(trigger))
		return nil
	})
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
