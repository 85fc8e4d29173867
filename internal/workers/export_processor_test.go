// internal/workers/export_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/workers"
	"github.com/ammerola/inventory-tracker/test/helpers"
	"github.com/ammerola/inventory-tracker/test/mocks"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func cellValue(t *testing.T, sheet *xlsx.Sheet, row, col int) string {
	t.Helper()

	cell, err := sheet.Cell(row, col)
	require.NoError(t, err)
	return cell.Value
}

func TestExportProcessor_ProcessExport(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInventoryService(ctrl)
	storage := mocks.NewMockFileStorage(ctrl)

	items := []domain.Item{
		{ID: 2, Name: "Apple", Price: decimal.RequireFromString("0.5"), QuantityInStock: 10},
		{ID: 1, Name: "Banana", Price: decimal.RequireFromString("1.25"), QuantityInStock: 0},
	}
	service.EXPECT().Snapshot(gomock.Any()).Return(items, nil)

	var uploaded []byte
	storage.EXPECT().
		Upload(gomock.Any(), "exports/inventory-20260102T030405Z.xlsx", gomock.Any(),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		DoAndReturn(func(_ context.Context, _ string, r io.Reader, _ string) (string, error) {
			var err error
			uploaded, err = io.ReadAll(r)
			return "s3://bucket/exports/inventory-20260102T030405Z.xlsx", err
		})

	p := workers.NewExportProcessor(service, storage, helpers.TestLogger(),
		workers.WithExportClock(func() time.Time { return fixedNow }))

	task, err := workers.NewExportTask("seeder")
	require.NoError(t, err)
	require.NoError(t, p.ProcessExport(context.Background(), task))

	file, err := xlsx.OpenBinary(uploaded)
	require.NoError(t, err)
	sheet, ok := file.Sheet["Inventory"]
	require.True(t, ok, "workbook should have an Inventory sheet")

	assert.Equal(t, "ID", cellValue(t, sheet, 0, 0))
	assert.Equal(t, "Name", cellValue(t, sheet, 0, 1))
	assert.Equal(t, "Price", cellValue(t, sheet, 0, 2))
	assert.Equal(t, "Quantity In Stock", cellValue(t, sheet, 0, 3))

	assert.Equal(t, "2", cellValue(t, sheet, 1, 0))
	assert.Equal(t, "Apple", cellValue(t, sheet, 1, 1))
	assert.Equal(t, "0.5", cellValue(t, sheet, 1, 2))
	assert.Equal(t, "10", cellValue(t, sheet, 1, 3))
	assert.Equal(t, "Banana", cellValue(t, sheet, 2, 1))
	assert.Equal(t, "0", cellValue(t, sheet, 2, 3))
}

func TestExportProcessor_EmptyInventoryStillExports(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInventoryService(ctrl)
	storage := mocks.NewMockFileStorage(ctrl)

	service.EXPECT().Snapshot(gomock.Any()).Return([]domain.Item{}, nil)
	storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("local", nil)

	p := workers.NewExportProcessor(service, storage, helpers.TestLogger())
	assert.NoError(t, p.ProcessExport(context.Background(), asynq.NewTask(workers.TypeInventoryExport, nil)))
}

func TestExportProcessor_Errors(t *testing.T) {
	tests := []struct {
		name       string
		payload    []byte
		setupMocks func(*mocks.MockInventoryService, *mocks.MockFileStorage)
		skipRetry  bool
	}{
		{
			name:      "malformed_payload",
			payload:   []byte("{not json"),
			skipRetry: true,
		},
		{
			name:      "unsupported_format",
			payload:   mustJSON(t, workers.ExportPayload{Format: "pdf"}),
			skipRetry: true,
		},
		{
			name:    "snapshot_fails",
			payload: mustJSON(t, workers.ExportPayload{Format: "xlsx"}),
			setupMocks: func(s *mocks.MockInventoryService, _ *mocks.MockFileStorage) {
				s.EXPECT().Snapshot(gomock.Any()).Return(nil, domain.ErrStorage)
			},
		},
		{
			name:    "upload_fails",
			payload: mustJSON(t, workers.ExportPayload{Format: "xlsx"}),
			setupMocks: func(s *mocks.MockInventoryService, f *mocks.MockFileStorage) {
				s.EXPECT().Snapshot(gomock.Any()).Return([]domain.Item{}, nil)
				f.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.New("bucket gone"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockInventoryService(ctrl)
			storage := mocks.NewMockFileStorage(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(service, storage)
			}

			p := workers.NewExportProcessor(service, storage, helpers.TestLogger())
			err := p.ProcessExport(context.Background(), asynq.NewTask(workers.TypeInventoryExport, tt.payload))

			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestExportKeyRoundTrip(t *testing.T) {
	key := workers.ExportKey(fixedNow.In(time.FixedZone("EST", -5*3600)))
	assert.Equal(t, "exports/inventory-20260102T030405Z.xlsx", key)

	takenAt, ok := workers.ParseExportKey(key)
	require.True(t, ok)
	assert.True(t, fixedNow.Equal(takenAt))

	for _, bad := range []string{"exports/notes.txt", "exports/inventory-yesterday.xlsx", "inventory-20260102T030405Z.xlsx"} {
		_, ok := workers.ParseExportKey(bad)
		assert.False(t, ok, bad)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
