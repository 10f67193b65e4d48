package core

type Signal any

// YankSignal is dispatched after text is stored by a yank.
type YankSignal struct {
	content  string
	lines    int
	linewise bool
	register rune
}

func (y YankSignal) Value() (content string, totalLines int, linewise bool) {
	return y.content, y.lines, y.linewise
}

// Register returns the register named with the '"' prefix, or 0.
func (y YankSignal) Register() rune { return y.register }

type DeleteSignal struct {
	content string
	lines   int
}

func (d DeleteSignal) Value() (content string, totalLines int) {
	return d.content, d.lines
}

type PasteSignal struct {
	totalLines int
}

func (p PasteSignal) Value() int {
	return p.totalLines
}

type UndoSignal struct{}

type RedoSignal struct{}

type MessageSignal struct {
	id    string
	value string
}

func (m MessageSignal) Value() (id, message string) {
	return m.id, m.value
}

type SaveSignal struct {
	content string
}

func (s SaveSignal) Value() string {
	return s.content
}

type QuitSignal struct{}

type ErrorSignal Error

func (e ErrorSignal) Value() (id ErrorId, err error) {
	return e.id, e.err
}

// OptionSignal carries a ":set name=value" command for the host to apply.
type OptionSignal struct {
	name  string
	value string
}

func (o OptionSignal) Value() (name, value string) {
	return o.name, o.value
}

type EnterCommandModeSignal struct{}

func (e *editor) DispatchSignal(signal Signal) {
	select {
	case e.updateSignal <- signal:
	default:
		e.logger.Warn("signal channel full, dropping signal", "signal", signal)
	}
}
