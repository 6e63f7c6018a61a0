package models

import "time"

// ExportState tracks where an order sits in the export lifecycle.
// Transitions are unflagged → pending → exported|failed. The only
// externally triggered reset is failed → pending (re-export).
type ExportState string

const (
	ExportStateUnflagged ExportState = "unflagged"
	ExportStatePending   ExportState = "pending"
	ExportStateExported  ExportState = "exported"
	ExportStateFailed    ExportState = "failed"
)

type Order struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	CustomerID uint      `gorm:"not null;default:0"` // 0 = guest checkout
	PlacedAt   time.Time
	Status     string `gorm:"size:32;not null"`

	ShippingFirstName string `gorm:"size:100"`
	ShippingLastName  string `gorm:"size:100"`
	ShippingAddress1  string `gorm:"size:255"`
	ShippingAddress2  string `gorm:"size:255"`
	ShippingCity      string `gorm:"size:100"`
	ShippingCounty    string `gorm:"size:100"`
	ShippingPostcode  string `gorm:"size:20"`

	BillingFirstName string `gorm:"size:100"`
	BillingLastName  string `gorm:"size:100"`
	BillingAddress1  string `gorm:"size:255"`
	BillingAddress2  string `gorm:"size:255"`
	BillingCity      string `gorm:"size:100"`
	BillingCounty    string `gorm:"size:100"`
	BillingPostcode  string `gorm:"size:20"`
	BillingPhone     string `gorm:"size:30"`
	BillingEmail     string `gorm:"size:255"`

	ExportState ExportState `gorm:"size:20;not null;default:unflagged;index"`
	ExportedAt  *time.Time
	ExportBatch string `gorm:"size:40;index"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   uint   `gorm:"not null;index"`
	ProductID uint   `gorm:"not null"`
	SKU       string `gorm:"size:64"`
	Name      string `gorm:"size:255;not null"`
	Quantity  int    `gorm:"not null"`
}

// CustomerName is the name that goes on the shipping label. Shipping
// fields win, billing fields fill the gaps for guest checkouts that
// only completed the billing form.
func (o *Order) CustomerName() string {
	first := o.ShippingFirstName
	if first == "" {
		first = o.BillingFirstName
	}
	last := o.ShippingLastName
	if last == "" {
		last = o.BillingLastName
	}
	name := first
	if last != "" {
		if name != "" {
			name += " "
		}
		name += last
	}
	return name
}

func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	return secondary
}

func (o *Order) Address1() string { return fallback(o.ShippingAddress1, o.BillingAddress1) }
func (o *Order) Address2() string { return fallback(o.ShippingAddress2, o.BillingAddress2) }
func (o *Order) City() string     { return fallback(o.ShippingCity, o.BillingCity) }
func (o *Order) County() string   { return fallback(o.ShippingCounty, o.BillingCounty) }
func (o *Order) Postcode() string { return fallback(o.ShippingPostcode, o.BillingPostcode) }

// TotalPieces sums the positive line item quantities. One piece is one
// unit of any product.
func (o *Order) TotalPieces() int {
	total := 0
	for _, item := range o.Items {
		if item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}
