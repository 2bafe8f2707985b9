package services

import (
	"log/slog"
	"sync"

	"placementhelper/ats-agent/internal/models"
)

// Notifier receives human-readable progress messages. It never affects control flow.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type NopNotifier struct{}

func (NopNotifier) Info(string)  {}
func (NopNotifier) Warn(string)  {}
func (NopNotifier) Error(string) {}

// LogNotifier forwards notices to slog.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

func (n LogNotifier) Info(msg string)  { n.logger().Info(msg) }
func (n LogNotifier) Warn(msg string)  { n.logger().Warn(msg) }
func (n LogNotifier) Error(msg string) { n.logger().Error(msg) }

// NoticeRecorder keeps notices so they can be returned to an HTTP client.
type NoticeRecorder struct {
	mu      sync.Mutex
	notices []models.Notice
}

func NewNoticeRecorder() *NoticeRecorder {
	return &NoticeRecorder{}
}

func (r *NoticeRecorder) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, models.Notice{Level: level, Message: msg})
}

func (r *NoticeRecorder) Info(msg string)  { r.add("info", msg) }
func (r *NoticeRecorder) Warn(msg string)  { r.add("warning", msg) }
func (r *NoticeRecorder) Error(msg string) { r.add("error", msg) }

// Notices returns a copy of what has been recorded so far; never nil.
func (r *NoticeRecorder) Notices() []models.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

type multiNotifier []Notifier

// MultiNotifier fans a notice out to every non-nil notifier.
func MultiNotifier(notifiers ...Notifier) Notifier {
	var m multiNotifier
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m multiNotifier) Info(msg string) {
	for _, n := range m {
		n.Info(msg)
	}
}

func (m multiNotifier) Warn(msg string) {
	for _, n := range m {
		n.Warn(msg)
	}
}

func (m multiNotifier) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
