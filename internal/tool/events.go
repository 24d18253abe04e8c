// Package tool implements the pointer-driven bounding-box tool: the
// state machine that turns pointer and keyboard events into
// annotation creation, selection, move, resize, pan, and zoom.
package tool

import (
	"github.com/ilbumi/satin/pkg/geometry"
)

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Modifiers carries the modifier-key flags of an input event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	// Space held: pan with the primary button.
	Space bool
}

// PointerEvent is a pointer-down/move/up notification in screen
// coordinates, as delivered by the host UI layer.
type PointerEvent struct {
	Pos    geometry.Point2D
	Button Button
	Mods   Modifiers
}

// WheelEvent is a scroll-wheel notification. DeltaY > 0 zooms in.
type WheelEvent struct {
	Pos    geometry.Point2D
	DeltaY float64
}

// Key identifies the keyboard keys the tool reacts to.
type Key int

const (
	KeyEscape Key = iota
	KeyDelete
	KeyBackspace
)

// Handle identifies one of the eight resize handles of a selected
// annotation, clockwise from the top-left corner.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

func (h Handle) String() string {
	switch h {
	case HandleNW:
		return "nw"
	case HandleN:
		return "n"
	case HandleNE:
		return "ne"
	case HandleE:
		return "e"
	case HandleSE:
		return "se"
	case HandleS:
		return "s"
	case HandleSW:
		return "sw"
	case HandleW:
		return "w"
	default:
		return "none"
	}
}
