// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/ammerola/inventory-tracker/internal/adapters/memory"
	"github.com/ammerola/inventory-tracker/internal/core/services"
	"github.com/ammerola/inventory-tracker/internal/core/store"
	"github.com/ammerola/inventory-tracker/test/helpers"
)

// benchEntry is one raw form entry
type benchEntry struct {
	name, price, quantity string
}

// newBenchService builds a service over an in-memory store
func newBenchService(b *testing.B) (*services.InventoryService, *store.ItemStore) {
	b.Helper()

	s := store.New(memory.NewItemRepository(helpers.TestLogger()), helpers.TestLogger())
	svc := services.NewInventoryService(s, helpers.TestLogger())
	b.Cleanup(func() {
		_ = svc.Close(context.Background())
		s.Close()
	})
	return svc, s
}

// createEntries returns n valid entries with distinct names
func createEntries(n int) []benchEntry {
	entries := make([]benchEntry, n)
	for i := range entries {
		entries[i] = benchEntry{
			name:     fmt.Sprintf("Bench Item %05d", n-i),
			price:    fmt.Sprintf("%d.%02d", 1+i%500, i%100),
			quantity: fmt.Sprintf("%d", i%20),
		}
	}
	return entries
}

// seedService adds every entry and waits for the writes
func seedService(b *testing.B, svc *services.InventoryService, entries []benchEntry) {
	b.Helper()

	ctx := context.Background()
	for _, e := range entries {
		w, err := svc.AddNewItem(ctx, e.name, e.price, e.quantity)
		if err != nil {
			b.Fatal(err)
		}
		if err := w.Wait(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
