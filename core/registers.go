package core

import (
	"strings"
	"sync"
	"unicode"
)

// Operator names the command that pushed text into a register.
type Operator string

const (
	OperatorYank   Operator = "yank"
	OperatorDelete Operator = "delete"
	OperatorChange Operator = "change"
)

const (
	UnnamedRegister   = '"'
	YankRegister      = '0'
	SmallDeleteReg    = '-'
	BlackHoleRegister = '_'
	ClipboardRegister = '+'
	SelectionRegister = '*'
)

// Register is a slot holding text pushed by yank, delete and change commands.
// KeyBuffer holds one segment per push; appending to a register adds segments.
type Register struct {
	KeyBuffer []string
	Linewise  bool
	Blockwise bool
}

func (r *Register) setText(text string, linewise bool) {
	r.KeyBuffer = []string{text}
	r.Linewise = linewise
	r.Blockwise = false
}

func (r *Register) pushText(text string, linewise bool) {
	if linewise && !r.Linewise && len(r.KeyBuffer) > 0 {
		r.KeyBuffer = append(r.KeyBuffer, "\n")
	}
	r.Linewise = r.Linewise || linewise
	r.KeyBuffer = append(r.KeyBuffer, text)
}

func (r *Register) String() string {
	return strings.Join(r.KeyBuffer, "")
}

func (r *Register) snapshot() Register {
	keyBuffer := make([]string, len(r.KeyBuffer))
	copy(keyBuffer, r.KeyBuffer)
	return Register{KeyBuffer: keyBuffer, Linewise: r.Linewise, Blockwise: r.Blockwise}
}

// IsValidRegister reports whether name can be used after the '"' prefix.
func IsValidRegister(name rune) bool {
	switch {
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z', name >= '0' && name <= '9':
		return true
	}
	return strings.ContainsRune(`"-_+*`, name)
}

// RegisterController owns every register. It is safe to share between editors,
// which is how registers stay global across panes.
type RegisterController struct {
	mu        sync.RWMutex
	unnamed   *Register
	registers map[rune]*Register
	clipboard Clipboard
}

func NewRegisterController(clipboard Clipboard) *RegisterController {
	return &RegisterController{
		unnamed:   &Register{},
		registers: make(map[rune]*Register),
		clipboard: clipboard,
	}
}

// GetRegister returns a copy of the register called name. Names that are not a
// single valid register character (for instance "yank") resolve to the unnamed
// register.
func (rc *RegisterController) GetRegister(name string) Register {
	runes := []rune(name)
	if len(runes) != 1 || !IsValidRegister(runes[0]) {
		rc.mu.RLock()
		defer rc.mu.RUnlock()
		return rc.unnamed.snapshot()
	}

	reg := unicode.ToLower(runes[0])
	if reg == ClipboardRegister || reg == SelectionRegister {
		return rc.readClipboard()
	}

	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if reg == UnnamedRegister {
		return rc.unnamed.snapshot()
	}
	if r, ok := rc.registers[reg]; ok {
		return r.snapshot()
	}

	return Register{}
}

// KeyBuffer returns the segments held by the register called name.
func (rc *RegisterController) KeyBuffer(name string) []string {
	return rc.GetRegister(name).KeyBuffer
}

// PushText stores text for op. name is the register given with the '"' prefix,
// or 0 when none was given. Uppercase names append to the lowercase register.
// Everything except the black hole register is mirrored to the clipboard.
func (rc *RegisterController) PushText(name rune, op Operator, text string, linewise bool) error {
	if name == BlackHoleRegister {
		return nil
	}
	if linewise && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	rc.mu.Lock()

	switch {
	case name == 0 || name == UnnamedRegister:
		switch op {
		case OperatorYank:
			rc.set(YankRegister, text, linewise)
		case OperatorDelete, OperatorChange:
			if strings.Contains(text, "\n") {
				rc.shiftNumbered()
				rc.set('1', text, linewise)
			} else {
				rc.set(SmallDeleteReg, text, linewise)
			}
		}
		rc.unnamed.setText(text, linewise)

	case name == ClipboardRegister || name == SelectionRegister:
		rc.unnamed.setText(text, linewise)

	case unicode.IsUpper(name):
		reg := unicode.ToLower(name)
		r, ok := rc.registers[reg]
		if !ok {
			r = &Register{}
			rc.registers[reg] = r
		}
		r.pushText(text, linewise)
		rc.unnamed.setText(r.String(), r.Linewise)

	default:
		rc.set(name, text, linewise)
		rc.unnamed.setText(text, linewise)
	}

	rc.mu.Unlock()

	return rc.writeClipboard(text)
}

func (rc *RegisterController) set(name rune, text string, linewise bool) {
	r, ok := rc.registers[name]
	if !ok {
		r = &Register{}
		rc.registers[name] = r
	}
	r.setText(text, linewise)
}

// shiftNumbered moves "1 to "2 and so on, dropping "9.
func (rc *RegisterController) shiftNumbered() {
	for i := '9'; i > '1'; i-- {
		if prev, ok := rc.registers[i-1]; ok {
			shifted := prev.snapshot()
			rc.registers[i] = &shifted
		}
	}
}

func (rc *RegisterController) writeClipboard(text string) error {
	if rc.clipboard == nil {
		return nil
	}
	return rc.clipboard.Write(text)
}

func (rc *RegisterController) readClipboard() Register {
	if rc.clipboard == nil {
		return Register{}
	}
	text, err := rc.clipboard.Read()
	if err != nil || text == "" {
		return Register{}
	}
	return Register{KeyBuffer: []string{text}, Linewise: strings.HasSuffix(text, "\n")}
}
