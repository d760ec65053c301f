// Package preview provides a live GLFW/OpenGL window that blits a
// render.Output (such as a render.Driver's in-progress accumulator) as a
// single textured quad, so a long render can be watched as it fills in.
package preview

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// Window is a small OpenGL-backed GLFW window sized to match the render
// resolution.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
}

// NewWindow opens a window of the given size and initialises its OpenGL
// context; the quad-blit shader program is compiled by NewBlitter.
func NewWindow(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("preview: init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	handle, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("preview: create window: %w", err)
	}
	handle.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("preview: init gl: %w", err)
	}

	return &Window{Handle: handle, Width: width, Height: height}, nil
}

// ShouldClose reports whether the user has requested the window close.
func (w *Window) ShouldClose() bool { return w.Handle.ShouldClose() }

// PollEvents processes pending input/window events.
func (w *Window) PollEvents() { glfw.PollEvents() }

// SwapBuffers presents the frame drawn since the last call.
func (w *Window) SwapBuffers() { w.Handle.SwapBuffers() }

// IsEscapePressed reports whether the escape key is currently held, the
// preview's only bound input (closes the window).
func (w *Window) IsEscapePressed() bool {
	return w.Handle.GetKey(glfw.KeyEscape) == glfw.Press
}

// Destroy tears down the window and terminates GLFW.
func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}
