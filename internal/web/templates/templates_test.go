package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
	"github.com/Conceptual-Machines/qrious/internal/generation"
	"github.com/Conceptual-Machines/qrious/internal/notify"
	"github.com/Conceptual-Machines/qrious/internal/payload"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestFormEscapesValues(t *testing.T) {
	out := renderString(t, Form(NewFormData(payload.Text{Value: `"><script>alert(1)</script>`})))

	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFormFieldsPerKind(t *testing.T) {
	out := renderString(t, Form(NewFormData(payload.Email{Address: "a@b.co"})))

	assert.Contains(t, out, `name="content"`)
	assert.Contains(t, out, `name="subject"`)
	assert.Contains(t, out, `<textarea rows="3" id="field-body" name="body"`)
	assert.Contains(t, out, "mailto:a@b.co")
}

func TestEditorMarksActiveKind(t *testing.T) {
	out := renderString(t, Editor(NewFormData(payload.SMS{})))

	assert.Contains(t, out, `class="kind" aria-selected="true" hx-get="/htmx/form?kind=sms"`)
	assert.Equal(t, 1, strings.Count(out, `aria-selected="true"`))
	assert.Equal(t, len(payload.Kinds())-1, strings.Count(out, `aria-selected="false"`))
}

func TestStatePhases(t *testing.T) {
	idle := renderString(t, State(StateData{Snapshot: generation.Snapshot{Phase: generation.PhaseIdle}}))
	assert.Contains(t, idle, "Your QR code will appear here.")

	pending := renderString(t, State(StateData{Snapshot: generation.Snapshot{Phase: generation.PhasePending}}))
	assert.Contains(t, pending, `hx-get="/htmx/state"`)
	assert.Equal(t, loadingModules, strings.Count(pending, `class="module"`))

	ready := renderString(t, State(StateData{Snapshot: generation.Snapshot{
		Phase:   generation.PhaseReady,
		Result:  encoder.NewResult(encoder.FormatRaster, []byte{1, 2, 3}),
		Request: payload.URL{Value: "https://go.dev"},
	}}))
	assert.Contains(t, ready, `src="data:image/png;base64,AQID"`)
	assert.Contains(t, ready, "https://go.dev")

	failed := renderString(t, State(StateData{Snapshot: generation.Snapshot{Phase: generation.PhaseFailed}}))
	assert.Contains(t, failed, "Generation failed")
	assert.NotContains(t, failed, "shorter")
}

func TestLoadingIsDeterministic(t *testing.T) {
	assert.Equal(t, renderString(t, Loading()), renderString(t, Loading()))
	assert.Equal(t, 3, moduleDelay(0))
	assert.Equal(t, 10, moduleDelay(1))
	assert.Equal(t, 0, moduleDelay(6))

	out := renderString(t, Loading())
	assert.Contains(t, out, `<div class="module" data-delay="3"></div>`)
	for i := range loadingModules {
		assert.Less(t, moduleDelay(i), 15)
	}
}

func TestToasts(t *testing.T) {
	items := []notify.Notification{
		{ID: "a", Level: notify.LevelSuccess, Title: "Copied", At: time.Now()},
		{ID: "b", Level: notify.LevelError, Title: "Oops", Message: "Try <again>"},
	}

	out := renderString(t, Toasts(items))

	assert.Contains(t, out, `id="toast-a" class="toast" data-level="success"`)
	assert.Contains(t, out, `id="toast-b" class="toast" data-level="error"`)
	assert.Contains(t, out, "Try &lt;again&gt;")
	assert.Equal(t, 1, strings.Count(out, "<p>"))
}

func TestSelectKeepsCustomValue(t *testing.T) {
	out := renderString(t, Form(NewFormData(payload.WiFi{SSID: "Home", Security: "WPA2"})))

	assert.Contains(t, out, `<option value="WPA">WPA</option>`)
	assert.Contains(t, out, `<option value="WPA2" selected>WPA2</option>`)
	assert.Equal(t, 1, strings.Count(out, " selected"))
}

func TestPageShowsVersion(t *testing.T) {
	data := PageData{
		Version: "v1.2.3",
		Form:    NewFormData(payload.Default()),
		State:   StateData{Snapshot: generation.Snapshot{Phase: generation.PhaseIdle}},
	}

	out := renderString(t, Page(data))
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "All rights reserved. · v1.2.3</span>")

	data.Version = ""
	assert.Contains(t, renderString(t, Page(data)), "All rights reserved.</span>")
}
