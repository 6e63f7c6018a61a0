// Package render builds the two CSV record sets the fulfillment
// partner ingests: the order file (one row per line item per order)
// and the packing list (batch-wide aggregated totals plus packaging
// materials).
package render

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"fulfillment-export-service/workers/export/dates"
	"fulfillment-export-service/workers/export/models"
	"fulfillment-export-service/workers/export/packing"
)

// Settings carries the fixed identifiers stamped on every row. Passed
// in explicitly so alternate accounts are testable without touching
// globals.
type Settings struct {
	AccountRef  string // e.g. KING01
	Courier     string // e.g. DPD
	ServiceCode string // e.g. 1^12 (courier 12:00 service)
}

type Renderer struct {
	logger   *zap.Logger
	settings Settings
}

func NewRenderer(logger *zap.Logger, settings Settings) *Renderer {
	return &Renderer{logger: logger, settings: settings}
}

// lineCode is the SKU for a line item, or a synthetic placeholder
// derived from the product reference. Items are never dropped for a
// missing code.
func lineCode(item models.OrderItem) string {
	if item.SKU != "" {
		return item.SKU
	}
	return fmt.Sprintf("MISSING_SKU_%d", item.ProductID)
}

// productCode resolves the code and surfaces a missing SKU as a
// data-quality warning. Only the order file path logs, so each
// occurrence warns once per run even though the packing list resolves
// the same items again.
func (r *Renderer) productCode(orderID uint, item models.OrderItem) string {
	code := lineCode(item)
	if item.SKU == "" {
		r.logger.Warn("Order item has no SKU, exporting with placeholder code",
			zap.Uint("order_id", orderID),
			zap.Uint("product_id", item.ProductID),
			zap.String("placeholder", code),
		)
	}
	return code
}

// OrderRows builds the order file rows. An order with four line items
// produces four rows sharing every column except product code,
// description and quantity. 19 columns, no header:
//
//	A account ref     H address 2       O quantity
//	B courier         I town/city       P telephone
//	C order ref       J county          Q email
//	D customer id     K postcode        R labels required
//	E blank           L delivery date   S courier service
//	F customer name   M product code
//	G address 1       N product description
func (r *Renderer) OrderRows(orders []models.Order, windows map[uint]dates.Window, plans map[uint]packing.Plan) [][]string {
	var rows [][]string

	for _, order := range orders {
		window := windows[order.ID]
		plan := plans[order.ID]

		shared := []string{
			r.settings.AccountRef,
			r.settings.Courier,
			strconv.FormatUint(uint64(order.ID), 10),
			strconv.FormatUint(uint64(order.CustomerID), 10),
			"",
			order.CustomerName(),
			order.Address1(),
			order.Address2(),
			order.City(),
			order.County(),
			order.Postcode(),
			window.DeliveryLabel,
			"", // M: product code, per line item
			"", // N: product description, per line item
			"", // O: quantity, per line item
			order.BillingPhone,
			order.BillingEmail,
			strconv.Itoa(plan.Labels),
			r.settings.ServiceCode,
		}

		for _, item := range order.Items {
			if item.Quantity <= 0 {
				continue
			}
			row := make([]string, len(shared))
			copy(row, shared)
			row[12] = r.productCode(order.ID, item)
			row[13] = item.Name
			row[14] = strconv.Itoa(item.Quantity)
			rows = append(rows, row)
		}
	}

	return rows
}

// PackingRows builds the packing list: one row per distinct product
// code with quantities summed across the whole batch, followed by one
// row per distinct packaging material code summed across all orders'
// plans. Rows appear in first-seen order so output is deterministic
// for a given input order. 15 columns, no header; all rows share the
// batch-level packing and delivery date columns.
func (r *Renderer) PackingRows(orders []models.Order, windows map[uint]dates.Window, plans map[uint]packing.Plan) [][]string {
	if len(orders) == 0 {
		return nil
	}

	// Every order in the batch shares the same cut-off window; the
	// first order's dates stand for the batch.
	window := windows[orders[0].ID]

	type total struct {
		code string
		desc string
		qty  int
	}

	var productOrder []string
	productTotals := make(map[string]*total)
	for _, order := range orders {
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				continue
			}
			code := lineCode(item)
			if existing, ok := productTotals[code]; ok {
				existing.qty += item.Quantity
				continue
			}
			productTotals[code] = &total{code: code, desc: item.Name, qty: item.Quantity}
			productOrder = append(productOrder, code)
		}
	}

	var materialOrder []string
	materialTotals := make(map[string]*total)
	for _, order := range orders {
		for _, m := range plans[order.ID].Materials {
			if existing, ok := materialTotals[m.Code]; ok {
				existing.qty += m.Quantity
				continue
			}
			materialTotals[m.Code] = &total{code: m.Code, desc: m.Description, qty: m.Quantity}
			materialOrder = append(materialOrder, m.Code)
		}
	}

	shared := []string{
		r.settings.AccountRef,
		r.settings.Courier,
		window.PackingLabel,
		window.PackingLabel,
		"",
		"Packing",
		"", "", "", "", "",
		window.DeliveryLabel,
	}

	appendRow := func(rows [][]string, tot *total) [][]string {
		row := make([]string, 0, 15)
		row = append(row, shared...)
		row = append(row, tot.code, tot.desc, strconv.Itoa(tot.qty))
		return append(rows, row)
	}

	var rows [][]string
	for _, code := range productOrder {
		rows = appendRow(rows, productTotals[code])
	}
	for _, code := range materialOrder {
		rows = appendRow(rows, materialTotals[code])
	}
	return rows
}
