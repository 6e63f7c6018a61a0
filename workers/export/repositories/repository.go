package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fulfillment-export-service/workers/export/models"
)

// OrderRepository is the export pipeline's view of the order store.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetPendingOrders returns every order flagged pending for export whose
// order status matches the configured ready status, with line items
// loaded, oldest first. Orders already exported are never returned, so
// re-running after a successful batch is naturally idempotent.
func (r *OrderRepository) GetPendingOrders(readyStatus string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("export_state = ? AND status = ?", models.ExportStatePending, readyStatus).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("get pending orders: %w", err)
	}
	return orders, nil
}

// MarkBatchExported flips every order in the batch to exported with the
// export timestamp and batch id, in a single transaction. The batch is
// all-or-nothing: no order is ever left half-updated.
func (r *OrderRepository) MarkBatchExported(orderIDs []uint, batch string, exportedAt time.Time) error {
	if len(orderIDs) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id IN ?", orderIDs).
			Updates(map[string]interface{}{
				"export_state": models.ExportStateExported,
				"exported_at":  exportedAt,
				"export_batch": batch,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(orderIDs)) {
			return fmt.Errorf("expected to update %d orders, updated %d", len(orderIDs), result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark batch exported: %w", err)
	}
	return nil
}

// FlagForExport moves an order into the pending state when it reaches
// the ready status. Orders that already went out are left alone.
func (r *OrderRepository) FlagForExport(orderID uint) error {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND export_state <> ?", orderID, models.ExportStateExported).
		Update("export_state", models.ExportStatePending)
	if result.Error != nil {
		return fmt.Errorf("flag order for export: %w", result.Error)
	}
	return nil
}

// ResetOrder puts an order back to pending so the next run picks it up
// again, clearing the export stamp and batch. This is the only
// externally triggered state reset.
func (r *OrderRepository) ResetOrder(orderID uint) error {
	result := r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"export_state": models.ExportStatePending,
			"exported_at":  nil,
			"export_batch": "",
		})
	if result.Error != nil {
		return fmt.Errorf("reset order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// CountPending reports how many orders the next run would pick up.
func (r *OrderRepository) CountPending(readyStatus string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("export_state = ? AND status = ?", models.ExportStatePending, readyStatus).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count pending orders: %w", err)
	}
	return count, nil
}

// GetOrdersByBatch returns the orders exported under one batch id, for
// reviewing what a specific run shipped.
func (r *OrderRepository) GetOrdersByBatch(batch string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("export_batch = ?", batch).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("get orders by batch: %w", err)
	}
	return orders, nil
}

// ExportLogRepository manages the append-only audit log.
type ExportLogRepository struct {
	db *gorm.DB
}

func NewExportLogRepository(db *gorm.DB) *ExportLogRepository {
	return &ExportLogRepository{db: db}
}

func (r *ExportLogRepository) Append(entry *models.ExportLogEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("append export log: %w", err)
	}
	return nil
}

// Latest returns the most recent entry, or nil when the log is empty.
func (r *ExportLogRepository) Latest() (*models.ExportLogEntry, error) {
	var entry models.ExportLogEntry
	err := r.db.Order("id DESC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest export log: %w", err)
	}
	return &entry, nil
}

// Page returns one page of entries, newest first, optionally filtered
// by status.
func (r *ExportLogRepository) Page(page, perPage int, status models.ExportStatus) ([]models.ExportLogEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	query := r.db.Model(&models.ExportLogEntry{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count export log: %w", err)
	}

	var entries []models.ExportLogEntry
	err := query.Order("id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("page export log: %w", err)
	}

	return entries, total, nil
}
