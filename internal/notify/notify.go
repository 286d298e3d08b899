// Package notify carries short user-facing notifications (toasts) from the
// generator to the page.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single toast. Message must be non-technical.
type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notifications
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification
var Discard Notifier = NotifierFunc(func(Notification) {})

func newNotification(level Level, title, message string) Notification {
	return Notification{
		ID:      uuid.New().String(),
		Level:   level,
		Title:   title,
		Message: message,
		At:      time.Now().UTC(),
	}
}

func Info(title, message string) Notification {
	return newNotification(LevelInfo, title, message)
}

func Success(title, message string) Notification {
	return newNotification(LevelSuccess, title, message)
}

func Error(title, message string) Notification {
	return newNotification(LevelError, title, message)
}

// DefaultFeedSize is how many undelivered notifications a Feed keeps
const DefaultFeedSize = 20

// Feed buffers notifications until the page drains them. When full the
// oldest entry is dropped.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultFeedSize
	}
	return &Feed{limit: limit}
}

func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, n)
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
}

// Drain returns pending notifications oldest first and clears the feed
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.items
	f.items = nil
	return out
}

// Len returns the number of pending notifications
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
