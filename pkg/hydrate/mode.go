package hydrate

import (
	"fmt"
	"strings"
)

// Mode selects the client-side trigger that runs a component's bootstrap.
type Mode string

const (
	// ModeNone renders static markup only.
	ModeNone Mode = ""
	// ModeLoad hydrates as soon as the page loads.
	ModeLoad Mode = "load"
	// ModeIdle hydrates on the first idle callback.
	ModeIdle Mode = "idle"
	// ModeVisible hydrates once the root element intersects the viewport.
	ModeVisible Mode = "visible"
)

// Modes lists the supported hydration modes.
func Modes() []Mode {
	return []Mode{ModeLoad, ModeIdle, ModeVisible}
}

// ParseMode normalises raw. Empty input yields ModeNone.
func ParseMode(raw string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if mode == ModeNone || mode.Valid() {
		return mode, nil
	}
	return ModeNone, fmt.Errorf("hydrate: unknown mode %q", raw)
}

// Valid reports whether m is one of load, idle or visible.
func (m Mode) Valid() bool {
	switch m {
	case ModeLoad, ModeIdle, ModeVisible:
		return true
	default:
		return false
	}
}

// Enabled reports whether m requests hydration at all.
func (m Mode) Enabled() bool {
	return m != ModeNone
}
