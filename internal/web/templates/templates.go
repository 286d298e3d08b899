// Package templates holds the templ components of the generator page.
// Components live in the .templ files; run `templ generate` after editing
// them.
package templates

import (
	"slices"

	"github.com/Conceptual-Machines/qrious/internal/generation"
	"github.com/Conceptual-Machines/qrious/internal/payload"
)

// loadingModules is the number of animated cells in the loading chip
const loadingModules = 25

// PageData is everything the generator page renders on first load
type PageData struct {
	Version string
	Form    FormData
	State   StateData
}

// NewPageData builds the initial page from the controller
func NewPageData(ctrl *generation.Controller, version string) PageData {
	return PageData{
		Version: version,
		Form:    NewFormData(ctrl.Current()),
		State:   StateData{Snapshot: ctrl.Snapshot()},
	}
}

type FormData struct {
	Kind    payload.Kind
	Fields  []payload.Field
	Values  map[string]string
	Payload string
}

func NewFormData(req payload.Request) FormData {
	return FormData{
		Kind:    req.Kind(),
		Fields:  payload.Fields(req.Kind()),
		Values:  payload.Values(req),
		Payload: payload.Template(req),
	}
}

type StateData struct {
	Snapshot generation.Snapshot
}

// moduleDelay spreads the appear animation over 1.5s, in tenths of a
// second. The spread is fixed so repeated polls render identical markup.
func moduleDelay(i int) int {
	return (i*7 + 3) % 15
}

func ariaBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func fieldID(name string) string {
	return "field-" + name
}

func kindURL(k payload.Kind) string {
	return "/htmx/form?kind=" + string(k)
}

// selectOptions keeps a value set through the API selectable even when the
// form does not offer it
func selectOptions(f payload.Field, value string) []string {
	if value == "" || slices.Contains(f.Options, value) {
		return f.Options
	}
	return append(slices.Clone(f.Options), value)
}

func versionSuffix(version string) string {
	if version == "" {
		return ""
	}
	return " · " + version
}
