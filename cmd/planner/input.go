package main

import (
	"landscape-engine/editor"
	"landscape-engine/window"
)

var panKeys = map[int]editor.Key{
	window.KeyW:     editor.KeyW,
	window.KeyA:     editor.KeyA,
	window.KeyS:     editor.KeyS,
	window.KeyD:     editor.KeyD,
	window.KeyUp:    editor.KeyUp,
	window.KeyDown:  editor.KeyDown,
	window.KeyLeft:  editor.KeyLeft,
	window.KeyRight: editor.KeyRight,
}

// bindInput routes window events to the engine's controller.
//
//	WASD / arrows  pan
//	right drag     orbit
//	wheel          zoom
//	M / T          move / scale tool (press again for none)
//	F              focus the selection
//	Z / Y          undo / redo
//	Esc            clear the selection
func bindInput(win *window.Window, e *editor.Engine) {
	c := e.Controller

	win.SetMouseButtonCallback(func(button int, pressed bool, x, y float64) {
		if pressed {
			c.MouseDown(button, x, y)
		} else {
			c.MouseUp(button)
		}
	})
	win.SetCursorCallback(c.MouseMove)
	win.SetScrollCallback(func(_, yoff float64) {
		c.Scroll(yoff)
	})
	win.SetFocusCallback(func(focused bool) {
		if !focused {
			c.Blur()
		}
	})

	win.SetKeyCallback(func(key int, pressed bool) {
		if k, ok := panKeys[key]; ok {
			if pressed {
				c.KeyDown(k)
			} else {
				c.KeyUp(k)
			}
			return
		}
		if !pressed {
			return
		}
		switch key {
		case window.KeyM:
			e.SetTool(toggle(c.Tool(), editor.ToolMove))
		case window.KeyT:
			e.SetTool(toggle(c.Tool(), editor.ToolScale))
		case window.KeyF:
			c.Focus()
		case window.KeyZ:
			c.Undo()
		case window.KeyY:
			c.Redo()
		case window.KeyEscape:
			e.ClearSelection()
		}
	})
}

func toggle(current, t editor.Tool) editor.Tool {
	if current == t {
		return editor.ToolNone
	}
	return t
}
