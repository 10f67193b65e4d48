package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter(t *testing.T) {
	em := NewEmitter()

	var got []any
	id := em.On(EventKeypress, func(p any) { got = append(got, p) })
	em.On(EventKeypress, func(p any) { got = append(got, "second") })

	em.Emit(EventKeypress, "y")
	em.Emit(EventCommandDone, CommandDone{Name: CommandYank})

	assert.Equal(t, []any{"y", "second"}, got)
	assert.Equal(t, 2, em.ListenerCount(EventKeypress))

	require.True(t, em.Off(EventKeypress, id))
	assert.False(t, em.Off(EventKeypress, id), "removing twice")
	assert.Equal(t, 1, em.ListenerCount(EventKeypress))
}

func TestEmitterHandlerMayUnsubscribe(t *testing.T) {
	em := NewEmitter()

	calls := 0
	var id ListenerID
	id = em.On(EventKeypress, func(any) {
		calls++
		em.Off(EventKeypress, id)
	})

	em.Emit(EventKeypress, "j")
	em.Emit(EventKeypress, "j")

	assert.Equal(t, 1, calls)
}

func TestHandleKeyEventOrder(t *testing.T) {
	tests := []struct {
		name    string
		content string
		keys    string
		want    []string
	}{
		{
			name:    "yy finishes on the second y",
			content: "one\ntwo",
			keys:    "yy",
			want:    []string{"key:y", "done:yank", "key:y"},
		},
		{
			name:    "yank with motion",
			content: "one two",
			keys:    "yw",
			want:    []string{"key:y", "done:yank", "key:w"},
		},
		{
			name:    "count prefix",
			content: "a\nb\nc",
			keys:    "2yy",
			want:    []string{"key:2", "key:y", "done:yank", "key:y"},
		},
		{
			name:    "register prefix",
			content: "one",
			keys:    `"ayy`,
			want:    []string{`key:"`, "key:a", "key:y", "done:yank", "key:y"},
		},
		{
			name:    "motion",
			content: "a\nb",
			keys:    "j",
			want:    []string{"done:motion", "key:j"},
		},
		{
			name:    "delete line",
			content: "a\nb",
			keys:    "dd",
			want:    []string{"key:d", "done:delete", "key:d"},
		},
		{
			name:    "escape abandons an operator",
			content: "a",
			keys:    "d<Esc>",
			want:    []string{"key:d", "done:cancel", "key:<Esc>"},
		},
		{
			name:    "invalid motion after operator",
			content: "a",
			keys:    "yq",
			want:    []string{"key:y", "done:invalid", "key:q"},
		},
		{
			name:    "insert text is not published",
			content: "",
			keys:    "ihey<Esc>",
			want:    []string{"done:insert", "key:i", "done:mode", "key:<Esc>"},
		},
		{
			name:    "command line",
			content: "a",
			keys:    ":set rnu<CR>",
			want:    []string{"key::", "done:ex", "key:<CR>"},
		},
		{
			name:    "visual yank",
			content: "hello",
			keys:    "vly",
			want:    []string{"done:mode", "key:v", "done:motion", "key:l", "done:yank", "key:y"},
		},
		{
			name:    "redo uses ctrl notation",
			content: "a",
			keys:    "<C-r>",
			want:    []string{"done:redo", "key:<C-r>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor(t, tt.content)
			log := recordEvents(e)

			typeKeys(t, e, tt.keys)

			assert.Equal(t, tt.want, *log)
		})
	}
}

func TestHandleKeyWithoutVimModeEmitsNothing(t *testing.T) {
	e, _ := newTestEditor(t, "abc")
	e.DisableVimMode(true)
	log := recordEvents(e)

	typeKeys(t, e, "yy<Esc>")

	assert.Empty(t, *log)
	assert.Equal(t, "yyabc", e.GetBuffer().GetCurrentContent())
}

func TestKeySymbol(t *testing.T) {
	tests := []struct {
		key  KeyEvent
		want string
	}{
		{KeyEvent{Rune: 'y'}, "y"},
		{KeyEvent{Rune: '$'}, "$"},
		{KeyEvent{Rune: 'Y'}, "Y"},
		{KeyEvent{Key: KeyEscape}, "<Esc>"},
		{KeyEvent{Key: KeyEnter}, "<CR>"},
		{KeyEvent{Key: KeyBackspace}, "<BS>"},
		{KeyEvent{Key: KeySpace}, "<Space>"},
		{KeyEvent{Rune: 'r', Modifiers: ModCtrl}, "<C-r>"},
		{KeyEvent{Rune: 'x', Modifiers: ModAlt}, "<A-x>"},
		{KeyEvent{Key: KeyUp, Modifiers: ModCtrl}, "<C-Up>"},
		{KeyEvent{}, "<Nop>"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Symbol())
		})
	}
}
