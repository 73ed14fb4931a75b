package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cafe-republic/api/internal/database"
	"github.com/shopspring/decimal"
)

// Order totals are stored GST-inclusive (5% = 2.5% CGST + 2.5% SGST), so
// billing back-computes the taxable value from the total.
var (
	gstDivisor  = decimal.NewFromFloat(1.05)
	gstHalfRate = decimal.NewFromFloat(0.025)
)

// InvoiceLine is the immutable line-item snapshot stored on the invoice.
type InvoiceLine struct {
	Name     string          `json:"name"`
	Quantity int32           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// InvoiceNumber derives the human-readable invoice number from the order ID.
// Deterministic per order, so re-billing the same order always collides on
// the unique index instead of producing a second invoice.
func InvoiceNumber(order database.Order) string {
	return "INV-" + strings.ToUpper(order.ID.String()[:8])
}

// BuildInvoice computes the billing snapshot for a settled order:
// subtotal = total/1.05, CGST = SGST = 2.5% of subtotal, and the rounding
// adjustment that brings the sum to a whole rupee.
func BuildInvoice(order database.Order, paymentMode string, items []database.OrderItemDetailRow) (database.CreateInvoiceParams, error) {
	total := numericToDecimal(order.TotalPrice)
	subtotal := total.Div(gstDivisor).Round(2)
	cgst := subtotal.Mul(gstHalfRate).Round(2)
	sgst := cgst
	gross := subtotal.Add(cgst).Add(sgst)
	rounded := gross.Round(0)
	roundOff := rounded.Sub(gross)

	lines := make([]InvoiceLine, len(items))
	for i, it := range items {
		price := numericToDecimal(it.PriceAtOrder)
		lines[i] = InvoiceLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    price,
			Total:    price.Mul(decimal.NewFromInt32(it.Quantity)),
		}
	}
	snapshot, err := json.Marshal(lines)
	if err != nil {
		return database.CreateInvoiceParams{}, fmt.Errorf("marshal invoice items: %w", err)
	}

	return database.CreateInvoiceParams{
		OrderID:       order.ID,
		InvoiceNumber: InvoiceNumber(order),
		TableNumber:   order.TableNumber,
		Subtotal:      decimalToNumeric(subtotal),
		Cgst:          decimalToNumeric(cgst),
		Sgst:          decimalToNumeric(sgst),
		RoundOff:      decimalToNumeric(roundOff),
		Total:         decimalToNumeric(rounded),
		PaymentMode:   paymentMode,
		Items:         snapshot,
	}, nil
}
