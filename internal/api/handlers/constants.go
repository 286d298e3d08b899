package handlers

import "time"

const (
	// Long-poll bounds for GET /api/v1/generations/current?wait=
	maxLongPoll = 10 * time.Second

	// Largest payload the browser is asked to copy through the HX-Trigger header
	maxClipboardBytes = 4096

	// Event the page script listens for to write the clipboard
	clipboardEvent = "qrious:copy"

	// Event that makes the page fetch pending toasts right away
	notifyEvent = "qrious:notify"
)
