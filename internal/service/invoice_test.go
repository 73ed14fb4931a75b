package service

import (
	"encoding/json"
	"testing"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestInvoiceNumber_Deterministic(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	order := database.Order{ID: id}

	got := InvoiceNumber(order)
	if got != "INV-A1B2C3D4" {
		t.Errorf("invoice number: got %v, want INV-A1B2C3D4", got)
	}
	if got != InvoiceNumber(order) {
		t.Error("invoice number must be stable for the same order")
	}
}

func TestBuildInvoice_GSTSplit(t *testing.T) {
	order := database.Order{
		ID:          uuid.New(),
		TableNumber: 7,
		TotalPrice:  makeNumeric("525.00"),
	}

	params, err := BuildInvoice(order, enum.PaymentModeCash, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !numericEquals(params.Subtotal, "500.00") {
		t.Errorf("subtotal: got %v, want 500.00", numericToDecimal(params.Subtotal))
	}
	if !numericEquals(params.Cgst, "12.50") {
		t.Errorf("cgst: got %v, want 12.50", numericToDecimal(params.Cgst))
	}
	if !numericEquals(params.Sgst, "12.50") {
		t.Errorf("sgst: got %v, want 12.50", numericToDecimal(params.Sgst))
	}
	if !numericEquals(params.Total, "525.00") {
		t.Errorf("total: got %v, want 525.00", numericToDecimal(params.Total))
	}
	if !numericEquals(params.RoundOff, "0.00") {
		t.Errorf("round_off: got %v, want 0.00", numericToDecimal(params.RoundOff))
	}
	if params.TableNumber != 7 {
		t.Errorf("table_number: got %d, want 7", params.TableNumber)
	}
}

func TestBuildInvoice_RoundOff(t *testing.T) {
	order := database.Order{
		ID:         uuid.New(),
		TotalPrice: makeNumeric("100.00"),
	}

	params, err := BuildInvoice(order, enum.PaymentModeUPI, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// subtotal = 100/1.05 = 95.24, cgst = sgst = 2.38, gross = 100.00
	if !numericEquals(params.Subtotal, "95.24") {
		t.Errorf("subtotal: got %v, want 95.24", numericToDecimal(params.Subtotal))
	}
	if !numericEquals(params.Cgst, "2.38") {
		t.Errorf("cgst: got %v, want 2.38", numericToDecimal(params.Cgst))
	}

	// Invariant: total = subtotal + cgst + sgst + round_off, total whole.
	sum := numericToDecimal(params.Subtotal).
		Add(numericToDecimal(params.Cgst)).
		Add(numericToDecimal(params.Sgst)).
		Add(numericToDecimal(params.RoundOff))
	if !sum.Equal(numericToDecimal(params.Total)) {
		t.Errorf("components %v do not sum to total %v", sum, numericToDecimal(params.Total))
	}
	if !numericToDecimal(params.Total).Equal(numericToDecimal(params.Total).Round(0)) {
		t.Errorf("total %v is not a whole amount", numericToDecimal(params.Total))
	}
}

func TestBuildInvoice_ItemSnapshot(t *testing.T) {
	order := database.Order{ID: uuid.New(), TotalPrice: makeNumeric("525.00")}
	items := []database.OrderItemDetailRow{
		{
			OrderItem: database.OrderItem{Quantity: 2, PriceAtOrder: makeNumeric("200.00")},
			Name:      "Veg Burger",
			Category:  "Mains",
		},
		{
			OrderItem: database.OrderItem{Quantity: 1, PriceAtOrder: makeNumeric("125.00")},
			Name:      "Iced Tea",
			Category:  "Beverages",
		},
	}

	params, err := BuildInvoice(order, enum.PaymentModeCard, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var lines []InvoiceLine
	if err := json.Unmarshal(params.Items, &lines); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if lines[0].Name != "Veg Burger" || lines[0].Quantity != 2 {
		t.Errorf("first line: %+v", lines[0])
	}
	if !lines[0].Total.Equal(lines[0].Price.Mul(decimal.NewFromInt32(2))) {
		t.Errorf("line total: got %v, want price*qty", lines[0].Total)
	}
}
