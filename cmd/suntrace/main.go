// Command suntrace renders a YAML scene description to a PNG file.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"time"

	"suntrace/render"
	"suntrace/scene"
)

func main() {
	scenePath := flag.String("scene", "", "path to the YAML scene file (required)")
	outPath := flag.String("out", "output.png", "path to write the rendered PNG")
	workers := flag.Int("workers", 0, "number of render workers (0 = GOMAXPROCS)")
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "suntrace: -scene is required")
		flag.Usage()
		os.Exit(2)
	}

	s, err := scene.LoadConfig(*scenePath)
	if err != nil {
		log.Fatalf("suntrace: load scene: %v", err)
	}

	driver := render.NewDriver(s)
	if *workers > 0 {
		driver.Workers = *workers
	}

	start := time.Now()
	out := driver.Render(context.Background())
	log.Printf("suntrace: rendered %dx%d in %s", s.Camera.Width, s.Camera.Height, time.Since(start))

	if err := writePNG(*outPath, out); err != nil {
		log.Fatalf("suntrace: write %q: %v", *outPath, err)
	}
}

func writePNG(path string, out *render.Output) error {
	img := image.NewRGBA(image.Rect(0, 0, out.Width, out.Height))
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := out.Color[y*out.Width+x]
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: toByte(c.A),
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
