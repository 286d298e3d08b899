package handlers

import (
	"errors"
	"net/http"

	apihandlers "github.com/Conceptual-Machines/qrious/internal/api/handlers"
	"github.com/Conceptual-Machines/qrious/internal/generation"
	"github.com/Conceptual-Machines/qrious/internal/logger"
	"github.com/Conceptual-Machines/qrious/internal/notify"
	"github.com/Conceptual-Machines/qrious/internal/payload"
	"github.com/Conceptual-Machines/qrious/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// Event that makes the page fetch pending toasts right away
const notifyTrigger = "qrious:notify"

type WebHandler struct {
	ctrl    *generation.Controller
	feed    *notify.Feed
	version string
}

func NewWebHandler(ctrl *generation.Controller, feed *notify.Feed, version string) *WebHandler {
	return &WebHandler{
		ctrl:    ctrl,
		feed:    feed,
		version: version,
	}
}

// Home renders the generator page
func (h *WebHandler) Home(c *gin.Context) {
	render(c, http.StatusOK, templates.Page(templates.NewPageData(h.ctrl, h.version)))
}

// Form switches the content kind and returns the empty editor for it
func (h *WebHandler) Form(c *gin.Context) {
	kind, err := payload.ParseKind(c.Query("kind"))
	if err != nil {
		c.String(http.StatusBadRequest, "Unknown content type")
		return
	}

	req, err := h.ctrl.SwitchKind(kind)
	if err != nil {
		c.String(http.StatusBadRequest, "Unknown content type")
		return
	}

	render(c, http.StatusOK, templates.Editor(templates.NewFormData(req)))
}

// UpdateRequest stores the edited form and returns the payload preview
func (h *WebHandler) UpdateRequest(c *gin.Context) {
	req, err := requestFromForm(c)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	h.ctrl.SetRequest(req)
	render(c, http.StatusOK, templates.Preview(payload.Template(req)))
}

// Generate starts a generation from the posted form and returns the new state
func (h *WebHandler) Generate(c *gin.Context) {
	req, err := requestFromForm(c)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ctrl.RequestGeneration(c.Request.Context(), req); err != nil {
		var verr *payload.ValidationError
		if !errors.As(err, &verr) {
			logger.Error("Generation request failed", err, logger.WithContext(c))
		}
		// the controller has queued a toast; the panel keeps its state
		c.Header("HX-Trigger", notifyTrigger)
	}

	h.renderState(c)
}

// State returns the result panel for the current phase
func (h *WebHandler) State(c *gin.Context) {
	h.renderState(c)
}

func (h *WebHandler) renderState(c *gin.Context) {
	snap := h.ctrl.Snapshot()
	if snap.Phase != generation.PhasePending {
		// a settled generation has just queued its toast
		c.Header("HX-Trigger", notifyTrigger)
	}
	render(c, http.StatusOK, templates.State(templates.StateData{Snapshot: snap}))
}

// Copy copies the templated payload through the page script. A posted form
// updates the request first.
func (h *WebHandler) Copy(c *gin.Context) {
	if c.PostForm("kind") != "" {
		req, err := requestFromForm(c)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		h.ctrl.SetRequest(req)
	}

	if _, err := h.ctrl.CopyCurrent(c.Request.Context(), apihandlers.BrowserClipboard(c)); err != nil {
		c.Header("HX-Trigger", notifyTrigger)
	}
	c.Status(http.StatusOK)
}

// Toasts drains queued notifications
func (h *WebHandler) Toasts(c *gin.Context) {
	items := h.feed.Drain()
	if len(items) == 0 {
		c.Status(http.StatusOK)
		return
	}
	render(c, http.StatusOK, templates.Toasts(items))
}

// requestFromForm reads the hidden kind input plus the fields of that kind
func requestFromForm(c *gin.Context) (payload.Request, error) {
	kind, err := payload.ParseKind(c.PostForm("kind"))
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, f := range payload.Fields(kind) {
		if v, ok := c.GetPostForm(f.Name); ok {
			values[f.Name] = v
		}
	}
	return payload.FromValues(kind, values)
}

func render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		logger.Error("Failed to render template", err, logger.WithContext(c))
		c.String(http.StatusInternalServerError, "Failed to render template")
	}
}
