package app

import (
	editor "github.com/ionut-t/yankhighlight/adapter-bubbletea"
	"github.com/ionut-t/yankhighlight/adapter-bubbletea/decoration"
	"github.com/ionut-t/yankhighlight/core"
	"github.com/ionut-t/yankhighlight/internal/plugin"
	"github.com/ionut-t/yankhighlight/yank"
)

type pane struct {
	path   string
	editor editor.Model
}

// workspace holds the panes of the application. It is only touched from the
// bubbletea Update goroutine, including by the plugin, which runs inside the
// Update of the active pane.
type workspace struct {
	panes       []*pane
	active      int
	registers   *core.RegisterController
	decorations *decoration.Renderer
	listeners   map[int]func(yank.View)
	nextID      int
}

func newWorkspace(registers *core.RegisterController, decorations *decoration.Renderer) *workspace {
	return &workspace{
		registers:   registers,
		decorations: decorations,
		listeners:   make(map[int]func(yank.View)),
	}
}

func (w *workspace) add(p *pane) {
	w.panes = append(w.panes, p)
}

func (w *workspace) activePane() *pane {
	if len(w.panes) == 0 {
		return nil
	}
	return w.panes[w.active]
}

func (w *workspace) pane(viewID string) *pane {
	for _, p := range w.panes {
		if p.editor.ViewID() == viewID {
			return p
		}
	}
	return nil
}

// setActive focuses pane i and notifies the active view listeners.
func (w *workspace) setActive(i int) {
	if len(w.panes) == 0 {
		return
	}

	i = (i%len(w.panes) + len(w.panes)) % len(w.panes)
	for j, p := range w.panes {
		if j == i {
			p.editor.Focus()
		} else {
			p.editor.Blur()
		}
	}
	w.active = i

	view := w.ActiveView()
	for _, fn := range w.listeners {
		fn(view)
	}
}

func (w *workspace) next() {
	w.setActive(w.active + 1)
}

func (w *workspace) ActiveView() yank.View {
	if p := w.activePane(); p != nil {
		return p.editor
	}
	return nil
}

// Renderer returns the decorations when view is an open pane with the
// extension attached.
func (w *workspace) Renderer(view yank.View) yank.Renderer {
	if view == nil || w.decorations == nil || w.pane(view.ViewID()) == nil {
		return nil
	}
	if !w.decorations.IsAttached(view.ViewID()) {
		return nil
	}
	return w.decorations
}

func (w *workspace) Views() []yank.View {
	views := make([]yank.View, 0, len(w.panes))
	for _, p := range w.panes {
		views = append(views, p.editor)
	}
	return views
}

func (w *workspace) Events(view yank.View) yank.EventSource {
	if view == nil {
		return nil
	}
	if p := w.pane(view.ViewID()); p != nil {
		return p.editor.Events()
	}
	return nil
}

func (w *workspace) Registers() yank.RegisterSource {
	return w.registers
}

func (w *workspace) Decorations() plugin.Decorations {
	if w.decorations == nil {
		return nil
	}
	return w.decorations
}

func (w *workspace) OnActiveViewChange(fn func(yank.View)) func() {
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn

	return func() {
		delete(w.listeners, id)
	}
}
