package catalog_test

import (
	"errors"
	"sync"
	"testing"

	"curator/internal/catalog"
)

func TestItemBudgetCeiling(t *testing.T) {
	budget := catalog.NewBudget(100, 3)
	item := budget.Item()

	for i := 0; i < 3; i++ {
		if err := item.Acquire(); err != nil {
			t.Fatalf("acquire %d returned error: %v", i, err)
		}
	}
	if err := item.Acquire(); !errors.Is(err, catalog.ErrBudgetExhausted) {
		t.Fatalf("expected exhaustion, got %v", err)
	}
	if item.Used() != 3 {
		t.Fatalf("unexpected used count: %d", item.Used())
	}
	if budget.Remaining() != 97 {
		t.Fatalf("unexpected run remaining: %d", budget.Remaining())
	}
}

func TestRunBudgetSharedAcrossItems(t *testing.T) {
	budget := catalog.NewBudget(2, 10)
	first := budget.Item()
	second := budget.Item()

	if err := first.Acquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if err := first.Acquire(); !errors.Is(err, catalog.ErrBudgetExhausted) {
		t.Fatalf("expected run exhaustion, got %v", err)
	}
	if budget.Remaining() != 0 {
		t.Fatalf("expected zero remaining, got %d", budget.Remaining())
	}
}

func TestBudgetConcurrentAcquire(t *testing.T) {
	const workers = 8
	const perWorker = 50
	budget := catalog.NewBudget(workers*perWorker/2, perWorker)

	var granted sync.Map
	var wg sync.WaitGroup
	counts := make([]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			item := budget.Item()
			for i := 0; i < perWorker; i++ {
				if err := item.Acquire(); err == nil {
					counts[w]++
				}
			}
			granted.Store(w, counts[w])
		}(w)
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	if total != workers*perWorker/2 {
		t.Fatalf("granted %d calls, want %d", total, workers*perWorker/2)
	}
}

func TestItemBudgetSpansPasses(t *testing.T) {
	budget := catalog.NewBudget(100, 4)
	item := budget.Item()

	// Main pass spends three calls.
	for i := 0; i < 3; i++ {
		if err := item.Acquire(); err != nil {
			t.Fatalf("main pass acquire: %v", err)
		}
	}

	// Rescue reuses the same view: only one call left.
	if err := item.Acquire(); err != nil {
		t.Fatalf("rescue acquire: %v", err)
	}
	if err := item.Acquire(); !errors.Is(err, catalog.ErrBudgetExhausted) {
		t.Fatalf("expected cumulative ceiling to hold, got %v", err)
	}
}
