package service

import (
	"sync"
	"testing"
)

// The production source is drawn on by shop and craft operations running on
// concurrent goroutines; draws must be race-free and stay in range.
func TestNewRand_ConcurrentDraws(t *testing.T) {
	r := NewRand()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if v := r.Intn(1000); v < 0 || v >= 1000 {
					t.Errorf("Intn(1000) returned %d", v)
					return
				}
				if f := r.Float64(); f < 0 || f >= 1 {
					t.Errorf("Float64() returned %f", f)
					return
				}
			}
		}()
	}
	wg.Wait()
}
