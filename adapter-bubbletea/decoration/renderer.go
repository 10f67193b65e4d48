// Package decoration tracks the yank highlight shown by each editor view.
package decoration

import (
	"sync"

	"github.com/ionut-t/yankhighlight/core"
)

// Renderer holds the yanked text to paint per view. It is shared by every view
// of the process and safe for concurrent use: highlights are set on the UI
// goroutine and removed from timer goroutines.
type Renderer struct {
	mu       sync.RWMutex
	attached map[string]struct{}
	pending  map[string]string
	updates  chan string
}

func New() *Renderer {
	return &Renderer{
		attached: make(map[string]struct{}),
		pending:  make(map[string]string),
		updates:  make(chan string, 16),
	}
}

// Attach enables decorations for viewID.
func (r *Renderer) Attach(viewID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached[viewID] = struct{}{}
}

// Detach disables decorations for viewID and drops its pending text.
func (r *Renderer) Detach(viewID string) {
	r.mu.Lock()
	_, had := r.pending[viewID]
	delete(r.attached, viewID)
	delete(r.pending, viewID)
	r.mu.Unlock()

	if had {
		r.notify(viewID)
	}
}

func (r *Renderer) IsAttached(viewID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.attached[viewID]
	return ok
}

// SetYankText makes text the highlighted text of viewID. Views that are not
// attached are ignored.
func (r *Renderer) SetYankText(text string, viewID string) {
	r.mu.Lock()
	if _, ok := r.attached[viewID]; !ok {
		r.mu.Unlock()
		return
	}
	r.pending[viewID] = text
	r.mu.Unlock()

	r.notify(viewID)
}

// CleanYankText removes the highlight of viewID.
func (r *Renderer) CleanYankText(viewID string) {
	r.mu.Lock()
	_, had := r.pending[viewID]
	delete(r.pending, viewID)
	r.mu.Unlock()

	if had {
		r.notify(viewID)
	}
}

// Clear removes every highlight and detaches every view.
func (r *Renderer) Clear() {
	r.mu.Lock()
	views := make([]string, 0, len(r.pending))
	for id := range r.pending {
		views = append(views, id)
	}
	clear(r.pending)
	clear(r.attached)
	r.mu.Unlock()

	for _, id := range views {
		r.notify(id)
	}
}

// Text returns the highlighted text of viewID.
func (r *Renderer) Text(viewID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	text, ok := r.pending[viewID]
	return text, ok
}

// Updates delivers the id of every view whose decoration changed. Sends never
// block; when the consumer falls behind, notifications are dropped.
func (r *Renderer) Updates() <-chan string {
	return r.updates
}

func (r *Renderer) notify(viewID string) {
	select {
	case r.updates <- viewID:
	default:
	}
}

// Range locates the highlighted text of viewID in lines and returns the
// half-open range [start, end) it covers. When the text occurs several times,
// the occurrence closest to cursor wins.
func (r *Renderer) Range(viewID string, lines []string, cursor core.Position) (start, end core.Position, ok bool) {
	text, found := r.Text(viewID)
	if !found || text == "" {
		return start, end, false
	}
	return Locate(text, lines, cursor)
}

// Locate finds text in lines, preferring the occurrence that contains cursor
// or, failing that, the one nearest to it.
func Locate(text string, lines []string, cursor core.Position) (start, end core.Position, ok bool) {
	needle := []rune(text)
	if len(needle) == 0 {
		return start, end, false
	}

	// Flatten the buffer, keeping the position of every rune.
	var (
		hay       []rune
		positions []core.Position
		cursorAt  int
	)
	for row, line := range lines {
		if row > 0 {
			hay = append(hay, '\n')
			positions = append(positions, core.Position{Row: row - 1, Col: len([]rune(lines[row-1]))})
		}
		col := 0
		for _, ch := range line {
			if row == cursor.Row && col == cursor.Col {
				cursorAt = len(hay)
			}
			hay = append(hay, ch)
			positions = append(positions, core.Position{Row: row, Col: col})
			col++
		}
		if row == cursor.Row && cursor.Col >= col {
			cursorAt = len(hay)
		}
	}

	best, bestDistance := -1, 0
	for i := 0; i+len(needle) <= len(hay); i++ {
		if !equalAt(hay, needle, i) {
			continue
		}

		distance := 0
		switch last := i + len(needle) - 1; {
		case cursorAt < i:
			distance = i - cursorAt
		case cursorAt > last:
			distance = cursorAt - last
		}

		if best == -1 || distance < bestDistance {
			best, bestDistance = i, distance
		}
		if distance == 0 {
			break
		}
	}

	if best == -1 {
		return start, end, false
	}

	start = positions[best]
	last := positions[best+len(needle)-1]
	end = core.Position{Row: last.Row, Col: last.Col + 1}

	return start, end, true
}

func equalAt(hay, needle []rune, at int) bool {
	for i, r := range needle {
		if hay[at+i] != r {
			return false
		}
	}
	return true
}

// Contains reports whether pos lies in [start, end).
func Contains(start, end, pos core.Position) bool {
	return !before(pos, start) && before(pos, end)
}

func before(a, b core.Position) bool {
	return a.Row < b.Row || (a.Row == b.Row && a.Col < b.Col)
}
