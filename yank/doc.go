// Package yank flashes a highlight over text right after it is yanked.
//
// A Detector listens to the key and command-done streams of a modal editor and
// decides, at each command boundary, whether the command was a yank. A
// Highlighter reacts to that decision: it reads the yank register, hands the
// text to the decoration renderer of the active view and schedules the removal
// of the highlight.
//
// Both types expect to be driven from a single goroutine, the host's event
// loop. Removal callbacks run on timer goroutines and only touch the renderer.
package yank
