package field

import (
	"runtime"
	"sync"
)

// tile is a half-open index range [lo, hi) over a field's backing slice.
type tile struct {
	lo, hi int
}

// minTileSize keeps small grids on a single goroutine; spinning up the pool
// costs more than the work below this size.
const minTileSize = 4096

// TilePool runs elementwise work over index-range tiles on a fixed number of
// goroutines. The pipeline's ProxyVis and VIS branches are independent, and
// within a branch the only safe unit of parallelism is per-tile.
type TilePool struct {
	workers int
}

// NewTilePool creates a pool with the given number of workers.
func NewTilePool(workers int) *TilePool {
	if workers < 1 {
		workers = 1
	}
	return &TilePool{workers: workers}
}

// MapRange invokes fn over tiles covering [0, n). fn must not touch indices
// outside its tile; tiles never overlap.
func (p *TilePool) MapRange(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if p.workers == 1 || n <= minTileSize {
		fn(0, n)
		return
	}

	size := n / p.workers
	if size < minTileSize {
		size = minTileSize
	}

	jobs := make(chan tile, p.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				fn(t.lo, t.hi)
			}
		}()
	}

	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		jobs <- tile{lo: lo, hi: hi}
	}
	close(jobs)

	wg.Wait()
}

var defaultPool = NewTilePool(runtime.NumCPU())

// ParallelRange runs fn over tiles of [0, n) using the package-level pool.
func ParallelRange(n int, fn func(lo, hi int)) {
	defaultPool.MapRange(n, fn)
}
