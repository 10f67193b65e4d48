package yank

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/ionut-t/yankhighlight/core"
)

// TriggerSymbol is the key symbol that marks a finished command as a yank.
const TriggerSymbol = "y"

// Detector fuses the keypress and command-done streams into yank decisions.
//
// Every keypress is appended to a pending buffer. A command-done event only sets
// a latch. The next keypress after the latch is the last key of the finished
// command: the buffer, including that key, is checked for TriggerSymbol and then
// emptied together with the latch, whatever the outcome.
//
// Any command whose keys contain "y" counts as a yank, so "yy", "yw" and "vy" all
// trigger, and so does a register prefix such as `"yp`.
type Detector struct {
	mu      sync.Mutex
	pending []string
	done    bool
	onYank  func()
	trigger string
	logger  *slog.Logger

	source    EventSource
	keyID     core.ListenerID
	commandID core.ListenerID
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithTrigger replaces the symbol that marks a yank.
func WithTrigger(symbol string) DetectorOption {
	return func(d *Detector) {
		d.trigger = symbol
	}
}

// WithDetectorLogger sets the logger for boundary decisions.
func WithDetectorLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector returns a detector that calls onYank once per yank command.
func NewDetector(onYank func(), opts ...DetectorOption) *Detector {
	d := &Detector{
		onYank:  onYank,
		trigger: TriggerSymbol,
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// HandleKeypress records symbol and, when a command has just finished, decides
// whether it was a yank.
func (d *Detector) HandleKeypress(symbol string) {
	d.mu.Lock()

	d.pending = append(d.pending, symbol)
	if !d.done {
		d.mu.Unlock()
		return
	}

	yanked := slices.Contains(d.pending, d.trigger)
	d.logger.Debug("command boundary", "keys", d.pending, "yank", yanked)

	d.pending = nil
	d.done = false
	d.mu.Unlock()

	if yanked && d.onYank != nil {
		d.onYank()
	}
}

// HandleCommandDone sets the latch. The payload is ignored.
func (d *Detector) HandleCommandDone(any) {
	d.mu.Lock()
	d.done = true
	d.mu.Unlock()
}

// Pending returns a copy of the keys seen since the last boundary.
func (d *Detector) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.pending)
}

// Done reports whether a command has finished and its last key is still expected.
func (d *Detector) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// Attach subscribes the detector to source. A detector listens to one source at a
// time; attaching again moves it.
func (d *Detector) Attach(source EventSource) {
	d.Detach()

	keyID := source.On(core.EventKeypress, func(payload any) {
		if symbol, ok := payload.(string); ok {
			d.HandleKeypress(symbol)
		}
	})
	commandID := source.On(core.EventCommandDone, d.HandleCommandDone)

	d.mu.Lock()
	d.source = source
	d.keyID = keyID
	d.commandID = commandID
	d.mu.Unlock()
}

// Detach removes both listeners and resets the pending state. It is a no-op when
// the detector is not attached.
func (d *Detector) Detach() {
	d.mu.Lock()
	source := d.source
	keyID, commandID := d.keyID, d.commandID
	d.source = nil
	d.pending = nil
	d.done = false
	d.mu.Unlock()

	if source == nil {
		return
	}

	source.Off(core.EventKeypress, keyID)
	source.Off(core.EventCommandDone, commandID)
}

// Attached reports whether the detector is subscribed to a source.
func (d *Detector) Attached() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source != nil
}
