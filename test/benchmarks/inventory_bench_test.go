package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

func BenchmarkInventoryOperations(b *testing.B) {
	ctx := context.Background()

	b.Run("AddNewItem", func(b *testing.B) {
		svc, _ := newBenchService(b)
		entries := createEntries(1024)

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			e := entries[i%len(entries)]
			w, err := svc.AddNewItem(ctx, e.name, e.price, e.quantity)
			if err != nil {
				b.Fatal(err)
			}
			_ = w.Wait(ctx)
		}
	})

	b.Run("PipelinedAdds", func(b *testing.B) {
		svc, _ := newBenchService(b)
		entries := createEntries(1024)

		b.ResetTimer()
		writes := make([]ports.PendingWrite, 0, b.N)
		for i := 0; i < b.N; i++ {
			e := entries[i%len(entries)]
			w, err := svc.AddNewItem(ctx, e.name, e.price, e.quantity)
			if err != nil {
				b.Fatal(err)
			}
			writes = append(writes, w)
		}
		for _, w := range writes {
			_ = w.Wait(ctx)
		}
	})

	b.Run("Snapshot", func(b *testing.B) {
		svc, _ := newBenchService(b)
		seedService(b, svc, createEntries(500))

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := svc.Snapshot(ctx); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("SellWithLiveQuery", func(b *testing.B) {
		svc, _ := newBenchService(b)
		seedService(b, svc, []benchEntry{{name: "Hot Item", price: "1", quantity: "1000000000"}})

		qctx, cancel := context.WithCancel(ctx)
		defer cancel()
		items, err := svc.AllItems(qctx)
		if err != nil {
			b.Fatal(err)
		}
		item := (<-items)[0]

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := svc.SellItem(ctx, item)
			if err := w.Wait(ctx); err != nil {
				b.Fatal(err)
			}
			item = w.Item()
		}
	})
}

func BenchmarkEntryParsing(b *testing.B) {
	entries := createEntries(64)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := entries[i%len(entries)]
		if !domain.IsEntryValid(e.name, e.price, e.quantity) {
			b.Fatal("entry should be valid")
		}
		if _, err := domain.ParseEntry(e.name, e.price, e.quantity); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetItemsFanOut(b *testing.B) {
	for _, subscribers := range []int{1, 16, 128} {
		b.Run(fmt.Sprintf("%d_subscribers", subscribers), func(b *testing.B) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc, s := newBenchService(b)
			seedService(b, svc, createEntries(50))

			for n := 0; n < subscribers; n++ {
				items, err := s.GetItems(ctx)
				if err != nil {
					b.Fatal(err)
				}
				go func() {
					for range items {
					}
				}()
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				w, err := svc.UpdateItem(ctx, 1, "Bench Item renamed", "2.00", "3")
				if err != nil {
					b.Fatal(err)
				}
				_ = w.Wait(ctx)
			}
		})
	}
}

