package core

type commandMode struct {
	commandBuffer []rune
}

func NewCommandMode() EditorMode  { return &commandMode{} }
func (m *commandMode) Name() Mode { return CommandMode }

func (m *commandMode) Enter(editor Editor, buffer Buffer) {
	editor.DispatchSignal(EnterCommandModeSignal{})
	m.commandBuffer = m.commandBuffer[:0]
	editor.UpdateStatus("")
	editor.UpdateCommand(":")
}

func (m *commandMode) Exit(editor Editor, buffer Buffer) {
	editor.UpdateCommand("")
}

func (m *commandMode) HandleKey(editor Editor, buffer Buffer, key KeyEvent) *Error {
	switch key.Key {
	case KeyEscape:
		editor.FinishCommand(CommandCancel)
		editor.SetNormalMode()
		return nil

	case KeyBackspace:
		if len(m.commandBuffer) == 0 {
			// Backspace on an empty command line abandons it
			editor.FinishCommand(CommandCancel)
			editor.SetNormalMode()
			return nil
		}
		m.commandBuffer = m.commandBuffer[:len(m.commandBuffer)-1]
		editor.UpdateCommand(":" + string(m.commandBuffer))
		return nil

	case KeyEnter:
		cmd := string(m.commandBuffer)
		editor.FinishCommand(CommandEx)
		editor.SetNormalMode()
		if err := editor.ExecuteCommand(cmd); err != nil {
			editor.DispatchError(ErrInvalidCommandId, err)
		}
		return nil

	case KeySpace:
		m.commandBuffer = append(m.commandBuffer, ' ')
		editor.UpdateCommand(":" + string(m.commandBuffer))
		return nil

	default:
		if key.Rune != 0 && key.Modifiers&(ModCtrl|ModAlt) == 0 {
			m.commandBuffer = append(m.commandBuffer, key.Rune)
			editor.UpdateCommand(":" + string(m.commandBuffer))
		}
		return nil
	}
}
