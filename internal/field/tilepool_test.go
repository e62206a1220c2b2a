package field

import "testing"

// TestMapRangeCoverage verifies that tiles cover every index exactly once,
// for sizes around the sequential cutoff and worker-count boundaries.
func TestMapRangeCoverage(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		n       int
	}{
		{"empty", 4, 0},
		{"single element", 4, 1},
		{"below sequential cutoff", 4, 100},
		{"at cutoff", 4, minTileSize},
		{"above cutoff", 4, minTileSize*3 + 17},
		{"one worker", 1, minTileSize * 2},
		{"more workers than tiles", 64, minTileSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewTilePool(tt.workers)
			seen := make([]int32, tt.n)
			pool.MapRange(tt.n, func(lo, hi int) {
				if lo < 0 || hi > tt.n || lo > hi {
					t.Errorf("tile [%d, %d) out of range [0, %d)", lo, hi, tt.n)
					return
				}
				// Tiles are disjoint, so unsynchronized writes are safe.
				for i := lo; i < hi; i++ {
					seen[i]++
				}
			})
			for i, c := range seen {
				if c != 1 {
					t.Fatalf("index %d covered %d times, want 1", i, c)
				}
			}
		})
	}
}

func TestNewTilePoolClampsWorkers(t *testing.T) {
	pool := NewTilePool(0)
	if pool.workers != 1 {
		t.Errorf("workers = %d, want 1", pool.workers)
	}
}
