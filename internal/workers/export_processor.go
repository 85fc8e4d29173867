// internal/workers/export_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{"ID", "Name", "Price", "Quantity In Stock"}

// ExportProcessor writes inventory snapshots to file storage
type ExportProcessor struct {
	service ports.InventoryService
	storage ports.FileStorage
	now     func() time.Time
	logger  *slog.Logger
}

// ExportOption configures an ExportProcessor
type ExportOption func(*ExportProcessor)

// WithExportClock overrides the clock used to name exports
func WithExportClock(now func() time.Time) ExportOption {
	return func(p *ExportProcessor) { p.now = now }
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(service ports.InventoryService, storage ports.FileStorage, logger *slog.Logger, opts ...ExportOption) *ExportProcessor {
	p := &ExportProcessor{
		service: service,
		storage: storage,
		now:     time.Now,
		logger:  logger.With(slog.String("processor", "export")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessExport snapshots the inventory and uploads it as a workbook
func (p *ExportProcessor) ProcessExport(ctx context.Context, t *asynq.Task) error {
	start := p.now()

	var payload ExportPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Format != "" && payload.Format != FormatXLSX {
		return fmt.Errorf("unsupported export format %q: %w", payload.Format, asynq.SkipRetry)
	}

	items, err := p.service.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot inventory: %w", err)
	}

	data, err := renderWorkbook(items)
	if err != nil {
		return err
	}

	key := ExportKey(start)
	location, err := p.storage.Upload(ctx, key, bytes.NewReader(data), xlsxContentType)
	if err != nil {
		return fmt.Errorf("failed to upload export: %w", err)
	}

	p.logger.InfoContext(ctx, "inventory exported",
		slog.String("requested_by", payload.RequestedBy),
		slog.String("key", key),
		slog.String("location", location),
		slog.Int("items", len(items)),
		slog.Duration("duration", p.now().Sub(start)))

	return nil
}

func renderWorkbook(items []domain.Item) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range exportHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, item := range items {
		row := sheet.AddRow()
		row.AddCell().SetInt64(item.ID)
		row.AddCell().SetString(item.Name)
		row.AddCell().SetString(item.Price.String())
		row.AddCell().SetInt(item.QuantityInStock)
	}

	for i := range exportHeaders {
		sheet.SetColWidth(i+1, i+1, 18)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}
