// Package plugin connects the yank detector and highlighter to a host
// application with any number of editor views.
package plugin

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ionut-t/yankhighlight/yank"
)

// Decorations is the per-view highlight extension the plugin registers.
type Decorations interface {
	Attach(viewID string)
	Detach(viewID string)
	Clear()
}

// Host is the application the plugin is loaded into.
type Host interface {
	yank.Workspace

	// Views returns every open view.
	Views() []yank.View
	// Events returns the key and command event source of view, or nil when
	// the view is gone.
	Events(view yank.View) yank.EventSource
	// Registers returns the register store shared by all views.
	Registers() yank.RegisterSource
	Decorations() Decorations
	// OnActiveViewChange calls fn with the new active view every time it
	// changes. The returned func removes the subscription.
	OnActiveViewChange(fn func(view yank.View)) (unsubscribe func())
}

// Settings supplies the highlight options. They are read on every yank so
// changes apply without reloading.
type Settings interface {
	HighlightDuration() time.Duration
	ClearHighlight() bool
}

// Plugin highlights yanks in every view of the host it is loaded into.
type Plugin struct {
	mu          sync.Mutex
	settings    Settings
	logger      *slog.Logger
	host        Host
	highlighter *yank.Highlighter
	detectors   map[string]*yank.Detector
	unsubscribe func()
	scheduler   func() yank.Scheduler
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger passed to detectors and the highlighter.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithScheduler replaces the timers used to remove highlights. newScheduler
// is called on every load.
func WithScheduler(newScheduler func() yank.Scheduler) Option {
	return func(p *Plugin) {
		p.scheduler = newScheduler
	}
}

// New returns an unloaded plugin reading its options from settings. A nil
// settings uses the defaults.
func New(settings Settings, opts ...Option) *Plugin {
	p := &Plugin{
		settings:  settings,
		logger:    slog.New(slog.DiscardHandler),
		detectors: make(map[string]*yank.Detector),
		scheduler: yank.NewTimerScheduler,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// OnLoad registers the decoration extension on every view and starts
// listening for active view changes. The active view is initialized right
// away. Loading twice is a no-op.
func (p *Plugin) OnLoad(host Host) {
	if host == nil {
		return
	}

	p.mu.Lock()
	if p.host != nil {
		p.mu.Unlock()
		return
	}

	p.host = host

	highlightOpts := []yank.Option{
		yank.WithScheduler(p.scheduler()),
		yank.WithLogger(p.logger),
	}
	if p.settings != nil {
		highlightOpts = append(highlightOpts,
			yank.WithDuration(p.settings.HighlightDuration),
			yank.WithClearOnExpiry(p.settings.ClearHighlight),
		)
	}
	p.highlighter = yank.NewHighlighter(host.Registers(), host, highlightOpts...)

	if decorations := host.Decorations(); decorations != nil {
		for _, view := range host.Views() {
			decorations.Attach(view.ViewID())
		}
	}
	p.mu.Unlock()

	// The host may call activate before OnActiveViewChange returns.
	unsubscribe := host.OnActiveViewChange(p.activate)

	p.mu.Lock()
	p.unsubscribe = unsubscribe
	p.mu.Unlock()

	p.activate(host.ActiveView())
	p.logger.Info("yank highlight loaded", "views", len(host.Views()))
}

// activate initializes view the first time it becomes active.
func (p *Plugin) activate(view yank.View) {
	if view == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.host == nil {
		return
	}

	id := view.ViewID()
	if _, ok := p.detectors[id]; ok {
		return
	}

	source := p.host.Events(view)
	if source == nil {
		p.logger.Debug("view has no event source", "view", id)
		return
	}

	if decorations := p.host.Decorations(); decorations != nil {
		decorations.Attach(id)
	}

	detector := yank.NewDetector(p.highlighter.HighlightYank, yank.WithDetectorLogger(p.logger))
	detector.Attach(source)
	p.detectors[id] = detector

	p.logger.Debug("view initialized", "view", id)
}

// OnUnload detaches every listener, cancels pending removals and clears every
// highlight.
func (p *Plugin) OnUnload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.host == nil {
		return
	}

	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}

	for id, detector := range p.detectors {
		detector.Detach()
		delete(p.detectors, id)
	}

	p.highlighter.Stop()
	p.highlighter = nil

	if decorations := p.host.Decorations(); decorations != nil {
		decorations.Clear()
	}

	p.host = nil
	p.logger.Info("yank highlight unloaded")
}

// Loaded reports whether the plugin is loaded into a host.
func (p *Plugin) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.host != nil
}

// Initialized reports whether view has a detector attached.
func (p *Plugin) Initialized(viewID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.detectors[viewID]
	return ok
}

// HighlightYank highlights the current yank register on the active view.
// It does nothing when the plugin is not loaded.
func (p *Plugin) HighlightYank() {
	p.mu.Lock()
	h := p.highlighter
	p.mu.Unlock()

	if h != nil {
		h.HighlightYank()
	}
}
