package yank

import "github.com/ionut-t/yankhighlight/core"

// YankRegisterName is the register the highlighter reads.
const YankRegisterName = "yank"

// EventSource publishes the editor's key and command-done streams.
// *core.Emitter satisfies it.
type EventSource interface {
	On(event core.Event, handler core.Handler) core.ListenerID
	Off(event core.Event, id core.ListenerID) bool
}

// RegisterSource reads a register by name. *core.RegisterController satisfies it.
type RegisterSource interface {
	GetRegister(name string) core.Register
}

// View is an editor view instance. Views are compared by ID.
type View interface {
	ViewID() string
}

// Renderer draws the yank decoration for a view.
type Renderer interface {
	SetYankText(text string, viewID string)
	CleanYankText(viewID string)
}

// Workspace resolves the active view and the renderer attached to a view.
// Both methods return nil when nothing can be resolved.
type Workspace interface {
	ActiveView() View
	Renderer(view View) Renderer
}
