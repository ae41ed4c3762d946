package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForVisitsEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}

	seen := make([]int32, 10)
	For(len(seen), func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

func TestForSequentialFallback(t *testing.T) {
	cfg := Config{Enabled: false, NumWorkers: 4, MinChunkSize: 1}

	// Without parallelism the order is preserved.
	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, cfg)

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestForZeroItems(t *testing.T) {
	For(0, func(_ int) {
		t.Error("f called for n = 0")
	}, DefaultConfig())
}

func TestForErr(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	var calls int64
	err := ForErr(8, func(i int) error {
		atomic.AddInt64(&calls, 1)
		switch i {
		case 2:
			return errA
		case 6:
			return errB
		}
		return nil
	}, cfg)

	if !errors.Is(err, errA) {
		t.Errorf("Expected error of the lowest index, got %v", err)
	}
	if calls != 8 {
		t.Errorf("Expected every item to run, got %d calls", calls)
	}

	if err := ForErr(3, func(int) error { return nil }, cfg); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}
