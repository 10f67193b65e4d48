package yank

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionut-t/yankhighlight/core"
)

type fakeView string

func (v fakeView) ViewID() string { return string(v) }

type call struct {
	op   string
	text string
	view string
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls []call
	text  map[string]string
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{text: make(map[string]string)}
}

func (r *fakeRenderer) SetYankText(text, viewID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"set", text, viewID})
	r.text[viewID] = text
}

func (r *fakeRenderer) CleanYankText(viewID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"clean", "", viewID})
	delete(r.text, viewID)
}

func (r *fakeRenderer) Text(viewID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.text[viewID]
	return text, ok
}

func (r *fakeRenderer) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

type fakeWorkspace struct {
	active    View
	renderers map[string]Renderer
}

func (w *fakeWorkspace) ActiveView() View {
	return w.active
}

func (w *fakeWorkspace) Renderer(view View) Renderer {
	if r, ok := w.renderers[view.ViewID()]; ok {
		return r
	}
	return nil
}

type registers map[string][]string

func (r registers) GetRegister(name string) core.Register {
	return core.Register{KeyBuffer: r[name]}
}

// manualScheduler records scheduled callbacks and runs them on Fire.
type manualScheduler struct {
	pending   map[string]func()
	durations map[string]time.Duration
	cancels   int
	stopped   bool
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{pending: make(map[string]func()), durations: make(map[string]time.Duration)}
}

func (s *manualScheduler) Schedule(key string, d time.Duration, fn func()) {
	s.pending[key] = fn
	s.durations[key] = d
}

func (s *manualScheduler) Cancel(key string) {
	s.cancels++
	delete(s.pending, key)
}

func (s *manualScheduler) Stop() {
	s.stopped = true
	clear(s.pending)
}

func (s *manualScheduler) Fire(key string) {
	if fn, ok := s.pending[key]; ok {
		delete(s.pending, key)
		fn()
	}
}

func newSetup(yanked ...string) (*fakeRenderer, *fakeWorkspace, registers) {
	r := newFakeRenderer()
	w := &fakeWorkspace{
		active:    fakeView("view-1"),
		renderers: map[string]Renderer{"view-1": r},
	}
	return r, w, registers{YankRegisterName: yanked}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"hello\n", "hello"},
		{"\n\nhello\n\n", "hello"},
		{"a\nb\n", "a\nb"},
		{"line\r\n", "line"},
		{"\r\nline\r\n\r\n", "line"},
		{"\n", ""},
		{"", ""},
		{"  spaced  \n", "  spaced  "},
		{"\rabc", "\rabc"},
		{"abc\r", "abc\r"},
		{"\n\rabc\r\n", "\rabc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "idempotent")
		})
	}
}

func TestHighlightYank(t *testing.T) {
	r, w, regs := newSetup("first line\n", "ignored")
	s := newManualScheduler()
	h := NewHighlighter(regs, w, WithScheduler(s))

	h.HighlightYank()

	assert.Equal(t, []call{{"set", "first line", "view-1"}}, r.Calls())
	assert.Equal(t, DefaultDuration, s.durations["view-1"])

	s.Fire("view-1")
	assert.Equal(t, []call{{"set", "first line", "view-1"}, {"clean", "", "view-1"}}, r.Calls())
}

func TestHighlightYankAborts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *fakeWorkspace, regs registers)
	}{
		{
			name:  "empty register",
			setup: func(_ *fakeWorkspace, regs registers) { delete(regs, YankRegisterName) },
		},
		{
			name:  "empty first segment",
			setup: func(_ *fakeWorkspace, regs registers) { regs[YankRegisterName] = []string{""} },
		},
		{
			name:  "no active view",
			setup: func(w *fakeWorkspace, _ registers) { w.active = nil },
		},
		{
			name:  "no renderer on the view",
			setup: func(w *fakeWorkspace, _ registers) { w.active = fakeView("view-2") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, w, regs := newSetup("text")
			tt.setup(w, regs)
			s := newManualScheduler()
			h := NewHighlighter(regs, w, WithScheduler(s))

			assert.NotPanics(t, h.HighlightYank)

			assert.Empty(t, r.Calls())
			assert.Empty(t, s.pending)
		})
	}
}

func TestHighlightYankClearOnExpiry(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		t.Run(map[bool]string{true: "enabled", false: "disabled"}[enabled], func(t *testing.T) {
			r, w, regs := newSetup("text")
			s := newManualScheduler()
			h := NewHighlighter(regs, w,
				WithScheduler(s),
				WithClearOnExpiry(func() bool { return enabled }),
			)

			h.HighlightYank()
			require.Contains(t, s.pending, "view-1", "the timer runs either way")
			s.Fire("view-1")

			_, shown := r.Text("view-1")
			assert.Equal(t, !enabled, shown)
		})
	}
}

func TestHighlightYankReplacesPendingRemoval(t *testing.T) {
	r, w, regs := newSetup("one")
	s := newManualScheduler()
	h := NewHighlighter(regs, w, WithScheduler(s))

	h.HighlightYank()
	regs[YankRegisterName] = []string{"two"}
	h.HighlightYank()

	assert.Equal(t, 2, s.cancels)
	assert.Len(t, s.pending, 1)

	text, _ := r.Text("view-1")
	assert.Equal(t, "two", text)
}

func TestHighlightYankReadsDurationEachTime(t *testing.T) {
	_, w, regs := newSetup("text")
	s := newManualScheduler()
	d := 100 * time.Millisecond
	h := NewHighlighter(regs, w, WithScheduler(s), WithDuration(func() time.Duration { return d }))

	h.HighlightYank()
	assert.Equal(t, 100*time.Millisecond, s.durations["view-1"])

	d = 1200 * time.Millisecond
	h.HighlightYank()
	assert.Equal(t, 1200*time.Millisecond, s.durations["view-1"])

	d = -time.Second
	h.HighlightYank()
	assert.Equal(t, DefaultDuration, s.durations["view-1"])
}

func TestHighlightYankWithTimers(t *testing.T) {
	r, w, regs := newSetup("text")
	h := NewHighlighter(regs, w, WithDuration(func() time.Duration { return 20 * time.Millisecond }))
	t.Cleanup(h.Stop)

	h.HighlightYank()
	_, shown := r.Text("view-1")
	require.True(t, shown)

	require.Eventually(t, func() bool {
		_, shown := r.Text("view-1")
		return !shown
	}, time.Second, 5*time.Millisecond)
}

func TestHighlightYankTimersArePerView(t *testing.T) {
	r, w, regs := newSetup("text")
	w.renderers["view-2"] = r
	h := NewHighlighter(regs, w, WithDuration(func() time.Duration {
		if w.active.ViewID() == "view-1" {
			return 30 * time.Millisecond
		}
		return time.Hour
	}))
	t.Cleanup(h.Stop)

	h.HighlightYank()
	w.active = fakeView("view-2")
	h.HighlightYank()

	require.Eventually(t, func() bool {
		_, shown := r.Text("view-1")
		return !shown
	}, time.Second, 5*time.Millisecond)

	_, shown := r.Text("view-2")
	assert.True(t, shown, "view-1's timer leaves view-2 alone")
}

func TestHighlighterStop(t *testing.T) {
	r, w, regs := newSetup("text")
	h := NewHighlighter(regs, w, WithDuration(func() time.Duration { return 10 * time.Millisecond }))

	h.HighlightYank()
	h.Stop()

	time.Sleep(50 * time.Millisecond)
	_, shown := r.Text("view-1")
	assert.True(t, shown)
}

func TestTimerSchedulerSupersedes(t *testing.T) {
	s := NewTimerScheduler()
	t.Cleanup(s.Stop)

	var mu sync.Mutex
	var ran []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
		}
	}

	s.Schedule("k", 10*time.Millisecond, record("first"))
	s.Schedule("k", 20*time.Millisecond, record("second"))
	s.Schedule("other", 10*time.Millisecond, record("other"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"second", "other"}, ran)
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := NewTimerScheduler()
	t.Cleanup(s.Stop)

	ran := make(chan struct{}, 1)
	s.Schedule("k", 10*time.Millisecond, func() { ran <- struct{}{} })
	s.Cancel("k")
	s.Cancel("missing")

	select {
	case <-ran:
		t.Fatal("cancelled callback ran")
	case <-time.After(40 * time.Millisecond):
	}
}

func TestHighlighterWithDetector(t *testing.T) {
	e := core.New(nil)
	e.SetContent([]byte("alpha\nbeta"))

	r := newFakeRenderer()
	w := &fakeWorkspace{active: fakeView("pane"), renderers: map[string]Renderer{"pane": r}}
	s := newManualScheduler()
	h := NewHighlighter(e.Registers(), w, WithScheduler(s))

	d := NewDetector(h.HighlightYank)
	d.Attach(e.Events())
	t.Cleanup(d.Detach)

	for _, k := range "jyy" {
		_ = e.HandleKey(core.KeyEvent{Rune: k})
	}

	text, shown := r.Text("pane")
	require.True(t, shown)
	assert.Equal(t, "beta", text)

	for _, k := range "kyw" {
		_ = e.HandleKey(core.KeyEvent{Rune: k})
	}
	text, _ = r.Text("pane")
	assert.Equal(t, "alpha", text)
}
