// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/inventory-tracker/internal/app"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
	"github.com/ammerola/inventory-tracker/internal/pkg/config"
	"github.com/ammerola/inventory-tracker/internal/pkg/logger"
	"github.com/ammerola/inventory-tracker/internal/workers"
)

var (
	adjectives = []string{"Antique", "Brass", "Ceramic", "Copper", "Enamel", "Glass", "Oak", "Pewter", "Silver", "Walnut"}
	nouns      = []string{"Bowl", "Candlestick", "Clock", "Inkwell", "Lamp", "Mirror", "Teapot", "Tray", "Vase", "Figurine"}
)

// entry is one item as typed into the inventory form
type entry struct {
	Name     string
	Price    string
	Quantity string
}

// generateEntries produces n raw entries. Names repeat once the
// adjective/noun pairs run out, so a few duplicates are expected.
func generateEntries(r *rand.Rand, n int) []entry {
	entries := make([]entry, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s", adjectives[r.IntN(len(adjectives))], nouns[r.IntN(len(nouns))])
		entries = append(entries, entry{
			Name:     name,
			Price:    fmt.Sprintf("%d.%02d", 1+r.IntN(250), r.IntN(100)),
			Quantity: fmt.Sprintf("%d", r.IntN(12)),
		})
	}
	return entries
}

func main() {
	var (
		count         = flag.Int("count", 25, "Number of items to add")
		reset         = flag.Bool("reset", false, "Delete every item before seeding")
		enqueueExport = flag.Bool("enqueue-export", false, "Enqueue an inventory export once seeding is done")
		seed          = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed for generated entries")
		dryRun        = flag.Bool("dry-run", false, "Print generated entries without writing them")
	)
	flag.Parse()

	slogger := logger.SetupLogger("info", "json").Logger

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger

	entries := generateEntries(rand.New(rand.NewPCG(*seed, *seed)), *count)
	if *dryRun {
		for _, e := range entries {
			slogger.Info("entry",
				slog.String("name", e.Name),
				slog.String("price", e.Price),
				slog.String("quantity", e.Quantity))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inventory := app.NewInventory(cfg, slogger)
	if err := run(ctx, inventory, entries, *reset, slogger); err != nil {
		slogger.Error("seeding failed", slog.String("error", err.Error()))
		_ = inventory.Close(context.Background())
		os.Exit(1)
	}
	if err := inventory.Close(context.Background()); err != nil {
		slogger.Error("failed to close inventory", slog.String("error", err.Error()))
	}

	if *enqueueExport {
		if err := enqueue(cfg, slogger); err != nil {
			slogger.Error("failed to enqueue export", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, inventory *app.Inventory, entries []entry, reset bool, logger *slog.Logger) error {
	if reset {
		if err := inventory.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset inventory: %w", err)
		}
	}

	service, err := inventory.Service(ctx)
	if err != nil {
		return err
	}

	added, skipped, err := seed(ctx, service, entries)
	if err != nil {
		return err
	}

	items, err := service.Snapshot(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		logger.Debug("item",
			slog.Int64("id", item.ID),
			slog.String("name", item.Name),
			slog.String("price", item.Price.String()),
			slog.Int("quantity_in_stock", item.QuantityInStock),
			slog.Bool("in_stock", service.IsStockAvailable(item)))
	}

	logger.Info("seeding complete",
		slog.Int("added", added),
		slog.Int("skipped", skipped),
		slog.Int("total_items", len(items)))
	return nil
}

// seed adds every valid entry and waits for all writes to land
func seed(ctx context.Context, service ports.InventoryService, entries []entry) (added, skipped int, err error) {
	writes := make([]ports.PendingWrite, 0, len(entries))
	for _, e := range entries {
		if !service.IsEntryValid(e.Name, e.Price, e.Quantity) {
			skipped++
			continue
		}

		w, err := service.AddNewItem(ctx, e.Name, e.Price, e.Quantity)
		if err != nil {
			return added, skipped, fmt.Errorf("failed to add %q: %w", e.Name, err)
		}
		writes = append(writes, w)
	}

	for _, w := range writes {
		if err := w.Wait(ctx); err != nil {
			return added, skipped, err
		}
		if w.Skipped() {
			skipped++
			continue
		}
		added++
	}
	return added, skipped, nil
}

func enqueue(cfg *config.Config, logger *slog.Logger) error {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	})
	defer client.Close()

	task, err := workers.NewExportTask("seeder")
	if err != nil {
		return err
	}

	info, err := client.Enqueue(task, asynq.Queue("default"))
	if err != nil {
		return err
	}

	logger.Info("export enqueued",
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
	return nil
}
