package core

// NewVisualLineMode returns the line-wise variant of visual mode, where the
// selection always covers whole lines.
func NewVisualLineMode() EditorMode {
	return &visualMode{linewise: true}
}
