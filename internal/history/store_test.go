package history

import (
	"fmt"
	"sync"
	"testing"
)

func TestStoreListNewestFirst(t *testing.T) {
	store := NewStore(10)

	store.Append(Entry{Symbol: "BTCUSDT", OrderID: 1})
	store.Append(Entry{Symbol: "ETHUSDT", OrderID: 2})
	store.Append(Entry{Symbol: "SOLUSDT", OrderID: 3})

	entries := store.List()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}

	if entries[0].OrderID != 3 || entries[2].OrderID != 1 {
		t.Errorf("entries not newest first: %+v", entries)
	}
}

func TestStoreBounded(t *testing.T) {
	store := NewStore(5)

	for i := 1; i <= 12; i++ {
		store.Append(Entry{OrderID: int64(i)})
	}

	if store.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", store.Len())
	}

	entries := store.List()
	if entries[0].OrderID != 12 {
		t.Errorf("newest OrderID = %d, want 12", entries[0].OrderID)
	}
	if entries[4].OrderID != 8 {
		t.Errorf("oldest retained OrderID = %d, want 8", entries[4].OrderID)
	}
}

func TestStoreListReturnsCopy(t *testing.T) {
	store := NewStore(10)
	store.Append(Entry{Symbol: "BTCUSDT"})

	entries := store.List()
	entries[0].Symbol = "MUTATED"

	if got := store.List()[0].Symbol; got != "BTCUSDT" {
		t.Errorf("Symbol = %q, internal state leaked", got)
	}
}

func TestStoreConcurrentAppends(t *testing.T) {
	store := NewStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Append(Entry{Symbol: fmt.Sprintf("SYM%d", worker)})
			}
		}(i)
	}
	wg.Wait()

	if store.Len() != 100 {
		t.Errorf("Len() = %d, want 100", store.Len())
	}
}
