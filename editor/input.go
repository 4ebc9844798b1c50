package editor

// Mouse button constants
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

// Key is a window-system independent key the controller reacts to. Hosts
// translate their native key codes.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// InputState tracks held buttons and keys and the last cursor position as
// fed in by host events.
type InputState struct {
	MouseX, MouseY float64
	hasCursor      bool

	mouseButtons [8]bool
	keys         map[Key]bool
}

// moveCursor records a new cursor position and returns the delta from the
// previous one. The first position yields a zero delta.
func (in *InputState) moveCursor(x, y float64) (dx, dy float64) {
	if in.hasCursor {
		dx, dy = x-in.MouseX, y-in.MouseY
	}
	in.MouseX, in.MouseY = x, y
	in.hasCursor = true
	return dx, dy
}

func (in *InputState) setButton(button int, down bool) {
	if button < 0 || button >= len(in.mouseButtons) {
		return
	}
	in.mouseButtons[button] = down
}

func (in *InputState) setKey(key Key, down bool) {
	if in.keys == nil {
		in.keys = make(map[Key]bool)
	}
	in.keys[key] = down
}

// --- Queries ---

func (in *InputState) IsMouseDown(button int) bool {
	if button < 0 || button >= len(in.mouseButtons) {
		return false
	}
	return in.mouseButtons[button]
}

func (in *InputState) IsKeyDown(key Key) bool {
	return in.keys[key]
}

// axis returns +1, -1 or 0 from a pair of opposing key groups.
func (in *InputState) axis(positive, negative []Key) float32 {
	var v float32
	for _, k := range positive {
		if in.keys[k] {
			v++
			break
		}
	}
	for _, k := range negative {
		if in.keys[k] {
			v--
			break
		}
	}
	return v
}

// releaseAll forgets every held button and key, e.g. on focus loss.
func (in *InputState) releaseAll() {
	in.mouseButtons = [8]bool{}
	in.keys = nil
}
