package models

import "time"

// ExportStatus is the terminal outcome of a single export run.
type ExportStatus string

const (
	ExportSuccess  ExportStatus = "success"
	ExportFailed   ExportStatus = "failed"
	ExportNoOrders ExportStatus = "no_orders"
)

// ExportLogEntry is one append-only audit row per export run.
type ExportLogEntry struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time    `gorm:"index"`
	Status      ExportStatus `gorm:"size:20;not null;index"`
	Message     string       `gorm:"type:text"`
	OrderCount  int          `gorm:"not null;default:0"`
	OrderIDs    string       `gorm:"type:text"` // comma-separated order ids
	OrderFile   string       `gorm:"size:255"`
	PackingFile string       `gorm:"size:255"`
	Meta        string       `gorm:"type:text"` // JSON blob with run details
}

func (ExportLogEntry) TableName() string {
	return "export_log"
}
