package yank

import (
	"log/slog"
	"strings"
	"time"
)

// DefaultDuration is how long a highlight stays when no duration is configured.
const DefaultDuration = 500 * time.Millisecond

// Highlighter shows the last yanked text on the active view and removes it after
// a delay. Each view has its own removal timer.
type Highlighter struct {
	registers     RegisterSource
	workspace     Workspace
	duration      func() time.Duration
	clearOnExpiry func() bool
	scheduler     Scheduler
	logger        *slog.Logger
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithDuration sets how long a highlight stays. fn is read on every yank so a
// changed setting applies to the next highlight.
func WithDuration(fn func() time.Duration) Option {
	return func(h *Highlighter) {
		if fn != nil {
			h.duration = fn
		}
	}
}

// WithClearOnExpiry decides, when the timer fires, whether the highlight is
// removed. With false the timer still runs but the decoration stays until the
// next yank replaces it.
func WithClearOnExpiry(fn func() bool) Option {
	return func(h *Highlighter) {
		if fn != nil {
			h.clearOnExpiry = fn
		}
	}
}

// WithScheduler replaces the timers that remove highlights.
func WithScheduler(s Scheduler) Option {
	return func(h *Highlighter) {
		if s != nil {
			h.scheduler = s
		}
	}
}

// WithLogger sets the logger for aborted and scheduled highlights.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Highlighter) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHighlighter returns a highlighter reading the yank register from
// registers and drawing on the active view of workspace.
func NewHighlighter(registers RegisterSource, workspace Workspace, opts ...Option) *Highlighter {
	h := &Highlighter{
		registers:     registers,
		workspace:     workspace,
		duration:      func() time.Duration { return DefaultDuration },
		clearOnExpiry: func() bool { return true },
		logger:        slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.scheduler == nil {
		h.scheduler = NewTimerScheduler()
	}

	return h
}

// HighlightYank decorates the first segment of the yank register on the active
// view. Every missing piece (register text, active view, renderer) ends the
// call silently.
func (h *Highlighter) HighlightYank() {
	if h.registers == nil || h.workspace == nil {
		return
	}

	reg := h.registers.GetRegister(YankRegisterName)
	if len(reg.KeyBuffer) == 0 || reg.KeyBuffer[0] == "" {
		h.logger.Debug("yank register is empty")
		return
	}
	text := Normalize(reg.KeyBuffer[0])

	view := h.workspace.ActiveView()
	if view == nil {
		h.logger.Debug("no active view")
		return
	}

	renderer := h.workspace.Renderer(view)
	if renderer == nil {
		h.logger.Debug("no decoration renderer", "view", view.ViewID())
		return
	}

	id := view.ViewID()

	// Cancel before drawing so an expiring timer cannot clear the new text.
	h.scheduler.Cancel(id)
	renderer.SetYankText(text, id)

	d := h.duration()
	if d < 0 {
		d = DefaultDuration
	}

	h.scheduler.Schedule(id, d, func() {
		if !h.clearOnExpiry() {
			h.logger.Debug("highlight expired, removal disabled", "view", id)
			return
		}
		renderer.CleanYankText(id)
	})

	h.logger.Debug("highlight yank", "view", id, "bytes", len(text), "duration", d)
}

// Stop cancels every pending removal.
func (h *Highlighter) Stop() {
	h.scheduler.Stop()
}

// Normalize strips leading and trailing runs of line breaks, where a line
// break is "\n" or "\r\n". A lone "\r" is kept.
func Normalize(text string) string {
	for strings.HasPrefix(text, "\n") || strings.HasPrefix(text, "\r\n") {
		text = strings.TrimPrefix(strings.TrimPrefix(text, "\r"), "\n")
	}
	for strings.HasSuffix(text, "\n") {
		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	}
	return text
}
