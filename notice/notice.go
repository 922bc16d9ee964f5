package notice

import (
	"sync"

	"go.uber.org/zap"
)

// Level mirrors the variants a view uses to style a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a short, user-visible message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to a Notifier.
type Func func(n Notice)

func (f Func) Notify(n Notice) { f(n) }

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// New builds a notice whose message is the translation of msgID.
func New(level Level, msgID string, data map[string]any) Notice {
	return Notice{Level: level, Message: Translate(msgID, data)}
}

// Logger writes notices to a zap logger.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Notify(n Notice) {
	switch n.Level {
	case LevelError:
		l.log.Error("notice", zap.String("message", n.Message))
	case LevelWarning:
		l.log.Warn("notice", zap.String("message", n.Message))
	default:
		l.log.Info("notice", zap.String("level", string(n.Level)), zap.String("message", n.Message))
	}
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of what has been recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Count returns how many recorded notices have the given level.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.notices {
		if item.Level == level {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
