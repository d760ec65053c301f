package render

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"suntrace/core"
	"suntrace/scene"
	"suntrace/tracer"
)

func scaleColor(c core.Color, s float64) core.Color {
	f := float32(s)
	return core.Color{R: c.R * f, G: c.G * f, B: c.B * f, A: c.A * f}
}

// Driver partitions a camera's pixels into contiguous blocks drawn from a
// shared, mutex-guarded counter, and runs one worker goroutine per
// available hardware thread. Each worker owns a local Output sized to one
// block and a local RNG, re-seeded at the start of every block from the
// scene's Params.Seed plus the block's first pixel index; as each block
// finishes the driver merges just that block's pixel range into the shared
// accumulator by elementwise addition, so the accumulator always reflects
// every block drawn so far, and a fixed seed and block size reproduce a
// bit-identical colour image whichever worker claims which block.
type Driver struct {
	Scene   *scene.Scene
	Workers int

	// Progress, if non-nil, is invoked after every merged block with the
	// accumulator as it stands so far — a live preview can redraw it
	// without waiting for the whole render to finish. It is called while
	// holding the merge lock, so it must not call back into the Driver.
	Progress func(*Output)
}

// NewDriver builds a Driver over s using runtime.GOMAXPROCS(0) workers.
func NewDriver(s *scene.Scene) *Driver {
	return &Driver{Scene: s, Workers: runtime.GOMAXPROCS(0)}
}

// blockCounter hands out contiguous pixel-index ranges of blockSize from a
// monotonic cursor, guarded by a mutex — the single piece of shared
// mutable state workers contend on while rendering.
type blockCounter struct {
	mu        sync.Mutex
	next      int
	total     int
	blockSize int
}

func (b *blockCounter) take() (start, end int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.next >= b.total {
		return 0, 0, false
	}
	start = b.next
	end = start + b.blockSize
	if end > b.total {
		end = b.total
	}
	b.next = end
	return start, end, true
}

// Render walks every pixel of s.Camera, k²·S sub-samples each, and returns
// the merged Output. ctx is polled at block boundaries only: cancelling it
// stops workers from claiming further blocks but does not interrupt a
// block already in progress.
func (d *Driver) Render(ctx context.Context) *Output {
	cam := d.Scene.Camera
	width, height := cam.Width, cam.Height
	out := New(width, height)

	blockSize := d.Scene.Params.BlockSize
	if blockSize <= 0 {
		blockSize = 64
	}
	counter := &blockCounter{total: width * height, blockSize: blockSize}

	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}

	var mergeMu sync.Mutex
	var panicMu sync.Mutex
	var firstPanic any
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		rng := rand.New(rand.NewSource(d.Scene.Params.Seed + int64(i)))
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if firstPanic == nil {
						firstPanic = r
					}
					panicMu.Unlock()
				}
			}()
			d.renderWorker(ctx, counter, out, &mergeMu, rng)
		}()
	}
	wg.Wait()
	if firstPanic != nil {
		// A worker panic discards whatever partial output was accumulated;
		// the caller gets the panic, not a half-drawn image.
		panic(firstPanic)
	}
	return out
}

// renderWorker drains blocks from counter, rendering each into a
// block-sized local Output before merging just that block's pixel range
// into out under mergeMu, until no blocks remain or ctx is cancelled. rng
// is this worker's own random source, re-seeded per block and threaded into
// every traced ray.
func (d *Driver) renderWorker(ctx context.Context, counter *blockCounter, out *Output, mergeMu *sync.Mutex, rng *rand.Rand) {
	cam := d.Scene.Camera
	width := cam.Width

	superSample := cam.SuperSample
	if superSample <= 0 {
		superSample = 1
	}
	subSamples := superSample * superSample
	dofSamples := 1
	if cam.DOF != nil && cam.DOF.Samples > 0 {
		dofSamples = cam.DOF.Samples
	}
	subWeight := 1.0 / float64(subSamples*dofSamples)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start, end, ok := counter.take()
		if !ok {
			return
		}
		rng.Seed(d.Scene.Params.Seed + int64(start))

		block := NewBlock(end - start)
		for p := start; p < end; p++ {
			x, y := p%width, p/width
			renderPixel(d.Scene, rng, block, p-start, x, y, subSamples, dofSamples, subWeight)
		}

		mergeMu.Lock()
		out.AddRange(block, start, end)
		if d.Progress != nil {
			d.Progress(out)
		}
		mergeMu.Unlock()
	}
}

// renderPixel accumulates every sub-sample's weighted tracer contribution
// for camera pixel (x, y) into local at local offset localIdx.
func renderPixel(s *scene.Scene, rng *rand.Rand, local *Output, localIdx, x, y, subSamples, dofSamples int, subWeight float64) {
	start := time.Now()
	cam := s.Camera

	for sub := 0; sub < subSamples; sub++ {
		for dof := 0; dof < dofSamples; dof++ {
			ray := cam.Ray(x, y, sub, dof)
			contrib := tracer.Trace(s, ray, rng)
			local.addAt(localIdx, 0,
				scaleColor(contrib.Color, subWeight),
				contrib.Light*subWeight,
				contrib.Shadow*subWeight,
				contrib.Distance*subWeight,
				contrib.ExitDir.Mul(subWeight),
				0,
			)
		}
	}

	elapsed := float64(time.Since(start).Microseconds())
	i := local.index(localIdx, 0)
	local.Time[i] += elapsed
}
