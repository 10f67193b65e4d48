package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetContent(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\n", []string{"a", ""}},
		{"a\nb", []string{"a", "b"}},
		{"héllo\nwörld", []string{"héllo", "wörld"}},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			b := NewBufferFromBytes([]byte(tt.content))
			assert.Equal(t, tt.want, b.GetLines())
			assert.False(t, b.IsModified())
		})
	}
}

func TestTextRange(t *testing.T) {
	b := NewBufferFromBytes([]byte("one\ntwo\nthree"))

	assert.Equal(t, "ne", b.TextRange(Position{0, 1}, Position{0, 3}))
	assert.Equal(t, "e\ntwo\nth", b.TextRange(Position{0, 2}, Position{2, 2}))
	assert.Equal(t, "e\ntwo\nth", b.TextRange(Position{2, 2}, Position{0, 2}), "order does not matter")
	assert.Equal(t, "\n", b.TextRange(Position{0, 3}, Position{1, 0}))
	assert.Equal(t, "", b.TextRange(Position{1, 1}, Position{1, 1}))
}

func TestInsertRunesAt(t *testing.T) {
	b := NewBufferFromBytes([]byte("ab\ncd"))

	require.Nil(t, b.InsertRunesAt(0, 1, []rune("X\nY")))
	assert.Equal(t, []string{"aX", "Yb", "cd"}, b.GetLines())
	assert.True(t, b.IsModified())

	require.Nil(t, b.InsertRunesAt(2, 2, []rune("!")))
	assert.Equal(t, []string{"aX", "Yb", "cd!"}, b.GetLines())

	err := b.InsertRunesAt(5, 0, []rune("x"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidPositionId, err.ID())
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestDeleteRange(t *testing.T) {
	b := NewBufferFromBytes([]byte("one\ntwo\nthree"))

	require.Nil(t, b.DeleteRange(Position{0, 2}, Position{2, 2}))
	assert.Equal(t, []string{"onree"}, b.GetLines())
}

func TestDeleteRunesAt(t *testing.T) {
	tests := []struct {
		name  string
		row   int
		col   int
		count int
		want  []string
	}{
		{"within line", 0, 1, 1, []string{"ac", "de"}},
		{"line break", 0, 3, 1, []string{"abcde"}},
		{"across lines", 0, 2, 3, []string{"abe"}},
		{"past end", 1, 0, 10, []string{"abc", ""}},
		{"nothing", 0, 0, 0, []string{"abc", "de"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromBytes([]byte("abc\nde"))
			require.Nil(t, b.DeleteRunesAt(tt.row, tt.col, tt.count))
			assert.Equal(t, tt.want, b.GetLines())
		})
	}
}

func TestLines(t *testing.T) {
	b := NewBufferFromBytes([]byte("a\nb\nc"))

	require.Nil(t, b.InsertLines(1, []string{"x", "y"}))
	assert.Equal(t, []string{"a", "x", "y", "b", "c"}, b.GetLines())

	removed, err := b.DeleteLines(3, 1)
	require.Nil(t, err)
	assert.Equal(t, []string{"x", "y", "b"}, removed)
	assert.Equal(t, []string{"a", "c"}, b.GetLines())

	_, err = b.DeleteLines(0, 1)
	require.Nil(t, err)
	assert.True(t, b.IsEmpty())

	_, err = b.DeleteLines(0, 4)
	assert.NotNil(t, err)
}

func TestSetCursorClamps(t *testing.T) {
	b := NewBufferFromBytes([]byte("abc\nd"))

	b.SetCursor(Cursor{Position: Position{9, 9}})
	assert.Equal(t, Position{1, 1}, b.GetCursor().Position)

	b.SetCursor(Cursor{Position: Position{-1, -1}})
	assert.Equal(t, Position{0, 0}, b.GetCursor().Position)
}
