// Package export implements the daily order export pipeline: collect
// flagged orders, compute delivery windows and packaging, render the
// partner's two CSV files, upload them, and advance order state only
// once the upload is verified.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fulfillment-export-service/workers/export/dates"
	"fulfillment-export-service/workers/export/models"
	"fulfillment-export-service/workers/export/notify"
	"fulfillment-export-service/workers/export/packing"
	"fulfillment-export-service/workers/export/render"
	"fulfillment-export-service/workers/export/transport"
)

// batchTokenFormat produces sortable, second-resolution batch ids that
// double as the filename timestamp.
const batchTokenFormat = "2006-01-02_150405"

// OrderStore is the slice of the order repository the pipeline needs.
type OrderStore interface {
	GetPendingOrders(readyStatus string) ([]models.Order, error)
	MarkBatchExported(orderIDs []uint, batch string, exportedAt time.Time) error
}

// AuditLog records exactly one entry per run.
type AuditLog interface {
	Append(entry *models.ExportLogEntry) error
}

// Config carries everything the pipeline needs beyond its
// collaborators, threaded explicitly so alternate accounts are
// testable without global state.
type Config struct {
	Schedule      string // cron expression for the in-process scheduler
	ReadyStatus   string // order status that makes a pending order eligible
	CutoffHour    int
	CutoffMinute  int
	ArchiveDir    string
	RetentionDays int
	Render        render.Settings
}

type Worker struct {
	logger      *zap.Logger
	orders      OrderStore
	audit       AuditLog
	transporter transport.Transporter
	notifier    notify.Notifier
	calc        *dates.Calculator
	renderer    *render.Renderer
	archive     *Archive
	cfg         Config
	now         func() time.Time
	busy        bool
}

func NewWorker(logger *zap.Logger, orders OrderStore, audit AuditLog, transporter transport.Transporter, notifier notify.Notifier, cfg Config) (*Worker, error) {
	calc, err := dates.NewCalculator(logger, cfg.CutoffHour, cfg.CutoffMinute)
	if err != nil {
		return nil, err
	}
	return &Worker{
		logger:      logger,
		orders:      orders,
		audit:       audit,
		transporter: transporter,
		notifier:    notifier,
		calc:        calc,
		renderer:    render.NewRenderer(logger, cfg.Render),
		archive:     NewArchive(logger, cfg.ArchiveDir),
		cfg:         cfg,
		now:         time.Now,
	}, nil
}

func (w *Worker) Schedule() string {
	return w.cfg.Schedule
}

// Ready guards the in-process cron path against overlapping runs. The
// external scheduler already guarantees single invocation; no further
// locking happens here.
func (w *Worker) Ready(time.Time) bool {
	return !w.busy
}

func (w *Worker) Execute() {
	w.busy = true
	defer func() {
		w.busy = false
	}()
	w.Run()
}

// Run executes one export batch to completion and returns its terminal
// status. Order state advances only after the transporter confirms
// every file, so a failed run leaves the whole batch pending for the
// next scheduled attempt.
func (w *Worker) Run() models.ExportStatus {
	runID := uuid.NewString()
	logger := w.logger.With(zap.String("run_id", runID))
	logger.Info("Starting export run")

	orders, err := w.orders.GetPendingOrders(w.cfg.ReadyStatus)
	if err != nil {
		return w.finishFailed(logger, runID, nil, transport.Result{}, "", "",
			fmt.Sprintf("Collecting pending orders failed: %v", err))
	}
	orders = exportable(orders)

	if len(orders) == 0 {
		logger.Info("No pending orders found, export skipped")
		w.writeAudit(logger, &models.ExportLogEntry{
			Status:  models.ExportNoOrders,
			Message: "No pending orders found. Export skipped.",
			Meta:    metaJSON(map[string]interface{}{"run_id": runID}),
		})
		w.send(logger, notify.Event{
			RunID:      runID,
			Status:     string(models.ExportNoOrders),
			Message:    "No pending orders found.",
			OccurredAt: w.now(),
		})
		return models.ExportNoOrders
	}

	windows := make(map[uint]dates.Window, len(orders))
	plans := make(map[uint]packing.Plan, len(orders))
	for _, order := range orders {
		windows[order.ID] = w.calc.Compute(order.PlacedAt)
		plans[order.ID] = packing.Allocate(order.TotalPieces())
	}

	batch := w.now().Format(batchTokenFormat)
	orderFile := sanitizeFilename(fmt.Sprintf("%s_ORDERS_%s.csv", w.cfg.Render.AccountRef, batch))
	packingFile := sanitizeFilename(fmt.Sprintf("%s_PACKING_%s.csv", w.cfg.Render.AccountRef, batch))

	orderPath, err := w.writeFile(orderFile, w.renderer.OrderRows(orders, windows, plans))
	if err == nil {
		var packingPath string
		packingPath, err = w.writeFile(packingFile, w.renderer.PackingRows(orders, windows, plans))
		if err == nil {
			return w.transfer(logger, runID, orders, batch, orderFile, packingFile, map[string]string{
				orderFile:   orderPath,
				packingFile: packingPath,
			})
		}
	}
	return w.finishFailed(logger, runID, orders, transport.Result{}, orderFile, packingFile,
		fmt.Sprintf("Writing archive files failed: %v", err))
}

func (w *Worker) writeFile(name string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	if err := render.WriteRows(&buf, rows); err != nil {
		return "", fmt.Errorf("serialize %s: %w", name, err)
	}
	return w.archive.Write(name, buf.Bytes())
}

func (w *Worker) transfer(logger *zap.Logger, runID string, orders []models.Order, batch, orderFile, packingFile string, files map[string]string) models.ExportStatus {
	result := w.transporter.Deliver(files)
	if !result.Success {
		return w.finishFailed(logger, runID, orders, result, orderFile, packingFile,
			fmt.Sprintf("Upload failed: %s", result.Error))
	}

	ids := orderIDs(orders)
	exportedAt := w.now()
	if err := w.orders.MarkBatchExported(ids, batch, exportedAt); err != nil {
		// Files are on the server but the state flip failed, so the
		// orders stay pending and the next run re-uploads them. The
		// partner's file drop is overwritten per batch filename, so
		// that retry is safe.
		return w.finishFailed(logger, runID, orders, result, orderFile, packingFile,
			fmt.Sprintf("Upload verified but marking orders exported failed: %v", err))
	}

	message := fmt.Sprintf("Exported %d orders. Files: %s, %s", len(orders), orderFile, packingFile)
	logger.Info("Export run succeeded",
		zap.Int("order_count", len(orders)),
		zap.String("batch", batch),
	)
	w.writeAudit(logger, &models.ExportLogEntry{
		Status:      models.ExportSuccess,
		Message:     message,
		OrderCount:  len(orders),
		OrderIDs:    joinIDs(ids),
		OrderFile:   orderFile,
		PackingFile: packingFile,
		Meta: metaJSON(map[string]interface{}{
			"run_id":   runID,
			"batch":    batch,
			"uploaded": result.Uploaded,
		}),
	})
	w.send(logger, notify.Event{
		RunID:       runID,
		Status:      string(models.ExportSuccess),
		Message:     message,
		OrderCount:  len(orders),
		OrderFile:   orderFile,
		PackingFile: packingFile,
		OccurredAt:  exportedAt,
	})

	if w.cfg.RetentionDays > 0 {
		w.archive.Cleanup(time.Duration(w.cfg.RetentionDays) * 24 * time.Hour)
	}
	return models.ExportSuccess
}

// finishFailed records the single failed audit entry for this run and
// notifies collaborators. Order state is deliberately untouched: the
// batch stays pending and the next scheduled run retries it.
func (w *Worker) finishFailed(logger *zap.Logger, runID string, orders []models.Order, result transport.Result, orderFile, packingFile, message string) models.ExportStatus {
	logger.Error("Export run failed",
		zap.String("error", message),
		zap.Int("order_count", len(orders)),
		zap.Strings("uploaded", result.Uploaded),
	)
	w.writeAudit(logger, &models.ExportLogEntry{
		Status:      models.ExportFailed,
		Message:     message,
		OrderCount:  len(orders),
		OrderIDs:    joinIDs(orderIDs(orders)),
		OrderFile:   orderFile,
		PackingFile: packingFile,
		Meta: metaJSON(map[string]interface{}{
			"run_id":   runID,
			"uploaded": result.Uploaded,
			"error":    message,
		}),
	})
	w.send(logger, notify.Event{
		RunID:      runID,
		Status:     string(models.ExportFailed),
		Message:    message,
		OrderCount: len(orders),
		OccurredAt: w.now(),
	})
	return models.ExportFailed
}

func (w *Worker) writeAudit(logger *zap.Logger, entry *models.ExportLogEntry) {
	entry.CreatedAt = w.now()
	if err := w.audit.Append(entry); err != nil {
		logger.Error("Failed to write export log entry", zap.Error(err))
	}
}

func (w *Worker) send(logger *zap.Logger, event notify.Event) {
	if err := w.notifier.Notify(event); err != nil {
		logger.Error("Failed to publish export event", zap.Error(err))
	}
}

// exportable drops orders that would contribute zero rows: no line
// items, or nothing with a positive quantity.
func exportable(orders []models.Order) []models.Order {
	var out []models.Order
	for _, order := range orders {
		if order.TotalPieces() > 0 {
			out = append(out, order)
		}
	}
	return out
}

func orderIDs(orders []models.Order) []uint {
	ids := make([]uint, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

func metaJSON(meta map[string]interface{}) string {
	data, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(data)
}
