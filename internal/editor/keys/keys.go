// Package keys describes key presses routed to the palette and node editors.
package keys

import (
	"fmt"
	"strings"
)

const (
	Enter      = "Enter"
	Escape     = "Escape"
	ArrowUp    = "ArrowUp"
	ArrowDown  = "ArrowDown"
	ArrowLeft  = "ArrowLeft"
	ArrowRight = "ArrowRight"
	Tab        = "Tab"
	Backspace  = "Backspace"
)

// Key is one key press with its modifiers.
type Key struct {
	Name  string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
}

// Of returns an unmodified key press.
func Of(name string) Key { return Key{Name: name} }

// Mod reports whether the platform command modifier (Ctrl or Cmd) is held.
func (k Key) Mod() bool { return k.Ctrl || k.Meta }

// Is reports whether k is the named key with no modifiers.
func (k Key) Is(name string) bool {
	return k.Name == name && !k.Ctrl && !k.Meta && !k.Shift && !k.Alt
}

func (k Key) String() string {
	var parts []string
	if k.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if k.Meta {
		parts = append(parts, "Meta")
	}
	if k.Alt {
		parts = append(parts, "Alt")
	}
	if k.Shift {
		parts = append(parts, "Shift")
	}
	return strings.Join(append(parts, k.Name), "+")
}

// Parse reads chords such as "Escape", "Mod+Enter" or "Ctrl-Shift-ArrowUp".
// "Mod" maps to Ctrl.
func Parse(s string) (Key, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == '-' })
	if len(fields) == 0 {
		return Key{}, fmt.Errorf("empty key %q", s)
	}
	k := Key{Name: fields[len(fields)-1]}
	for _, m := range fields[:len(fields)-1] {
		switch strings.ToLower(m) {
		case "ctrl", "control", "mod":
			k.Ctrl = true
		case "meta", "cmd", "command":
			k.Meta = true
		case "shift":
			k.Shift = true
		case "alt", "option":
			k.Alt = true
		default:
			return Key{}, fmt.Errorf("unknown modifier %q in %q", m, s)
		}
	}
	return k, nil
}
