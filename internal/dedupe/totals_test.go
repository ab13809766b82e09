package dedupe

import (
	"sync"
	"testing"
)

func TestRunTotalsAccumulate(t *testing.T) {
	totals := &RunTotals{}
	sizes := []int64{100, 2048, 0, 1 << 30}
	var sum int64
	for _, size := range sizes {
		totals.Add(size)
		sum += size
	}
	if totals.Files() != len(sizes) {
		t.Errorf("files = %d, want %d", totals.Files(), len(sizes))
	}
	if totals.Bytes() != sum {
		t.Errorf("bytes = %d, want %d", totals.Bytes(), sum)
	}
}

func TestRunTotalsGigabytes(t *testing.T) {
	totals := &RunTotals{}
	totals.Add(3 * 1024 * 1024 * 1024)
	if got := totals.Gigabytes(); got != 3.0 {
		t.Errorf("gigabytes = %v, want 3.0", got)
	}
}

func TestRunTotalsConcurrentAdds(t *testing.T) {
	totals := &RunTotals{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			totals.Add(10)
		}()
	}
	wg.Wait()
	if totals.Files() != 50 || totals.Bytes() != 500 {
		t.Errorf("totals = %d files / %d bytes", totals.Files(), totals.Bytes())
	}
}
