package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text   string
	err    error
	writes int
}

func (c *fakeClipboard) Write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.writes++
	c.text = text
	return nil
}

func (c *fakeClipboard) Read() (string, error) {
	return c.text, c.err
}

var namedKeys = map[string]KeyEvent{
	"<Esc>":   {Key: KeyEscape},
	"<CR>":    {Key: KeyEnter},
	"<BS>":    {Key: KeyBackspace},
	"<Tab>":   {Key: KeyTab},
	"<Space>": {Key: KeySpace},
	"<Up>":    {Key: KeyUp},
	"<Down>":  {Key: KeyDown},
	"<Left>":  {Key: KeyLeft},
	"<Right>": {Key: KeyRight},
	"<C-r>":   {Rune: 'r', Modifiers: ModCtrl},
}

// parseKeys turns "yy<Esc>" into key events. Bracketed names map through namedKeys.
func parseKeys(t *testing.T, keys string) []KeyEvent {
	t.Helper()

	var out []KeyEvent
	for len(keys) > 0 {
		if strings.HasPrefix(keys, "<") {
			if end := strings.Index(keys, ">"); end > 1 {
				k, ok := namedKeys[keys[:end+1]]
				require.True(t, ok, "unknown key %s", keys[:end+1])
				out = append(out, k)
				keys = keys[end+1:]
				continue
			}
		}
		r := []rune(keys)[0]
		out = append(out, KeyEvent{Rune: r})
		keys = keys[len(string(r)):]
	}
	return out
}

func newTestEditor(t *testing.T, content string) (Editor, *fakeClipboard) {
	t.Helper()

	cb := &fakeClipboard{}
	e := New(cb)
	e.SetContent([]byte(content))
	return e, cb
}

func typeKeys(t *testing.T, e Editor, keys string) {
	t.Helper()
	for _, k := range parseKeys(t, keys) {
		_ = e.HandleKey(k)
	}
}

// recordEvents captures emitted events as "key:<symbol>" and "done:<name>".
func recordEvents(e Editor) *[]string {
	var log []string
	e.Events().On(EventKeypress, func(payload any) {
		log = append(log, fmt.Sprintf("key:%v", payload))
	})
	e.Events().On(EventCommandDone, func(payload any) {
		log = append(log, "done:"+payload.(CommandDone).Name)
	})
	return &log
}

func setCursor(e Editor, row, col int) {
	c := e.GetBuffer().GetCursor()
	c.Position = Position{row, col}
	c.Preferred = col
	e.GetBuffer().SetCursor(c)
}
