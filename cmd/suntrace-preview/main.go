// Command suntrace-preview renders a YAML scene description in a
// background goroutine while a live GLFW/OpenGL window displays the
// partial Output as it fills in, until the render finishes or Escape is
// pressed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"suntrace/preview"
	"suntrace/render"
	"suntrace/scene"
)

func main() {
	scenePath := flag.String("scene", "", "path to the YAML scene file (required)")
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "suntrace-preview: -scene is required")
		flag.Usage()
		os.Exit(2)
	}

	s, err := scene.LoadConfig(*scenePath)
	if err != nil {
		log.Fatalf("suntrace-preview: load scene: %v", err)
	}

	win, err := preview.NewWindow(s.Camera.Width, s.Camera.Height, "suntrace-preview")
	if err != nil {
		log.Fatalf("suntrace-preview: %v", err)
	}
	defer win.Destroy()

	blitter, err := preview.NewBlitter()
	if err != nil {
		log.Fatalf("suntrace-preview: %v", err)
	}
	defer blitter.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver := render.NewDriver(s)

	var snapMu sync.Mutex
	snapshot := render.New(s.Camera.Width, s.Camera.Height)
	lastUpdate := time.Time{}
	driver.Progress = func(out *render.Output) {
		// Called under the driver's merge lock, so out is safe to read here
		// without any further synchronization; snapMu only guards snapshot
		// against the concurrent read in the window's redraw loop below.
		if time.Since(lastUpdate) < 100*time.Millisecond {
			return
		}
		lastUpdate = time.Now()
		snapMu.Lock()
		snapshot.Clear()
		snapshot.Add(out)
		snapMu.Unlock()
	}

	renderDone := make(chan *render.Output, 1)
	go func() { renderDone <- driver.Render(ctx) }()

	for !win.ShouldClose() {
		win.PollEvents()
		if win.IsEscapePressed() {
			cancel()
		}

		select {
		case final := <-renderDone:
			blitter.Draw(final)
			win.SwapBuffers()
			for !win.ShouldClose() && !win.IsEscapePressed() {
				win.PollEvents()
				win.SwapBuffers()
			}
			return
		default:
		}

		snapMu.Lock()
		blitter.Draw(snapshot)
		snapMu.Unlock()
		win.SwapBuffers()
	}
}
