package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func mustDecimal(t *testing.T, val string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(val)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", val, err)
	}
	return d
}

func completedOrder(total string, mode string, created time.Time, prepMinutes float64) database.Order {
	return database.Order{
		ID:          uuid.New(),
		Status:      enum.OrderStatusCompleted,
		TotalPrice:  makeNumeric(total),
		IsPaid:      true,
		PaymentMode: mode,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Duration(prepMinutes * float64(time.Minute))),
	}
}

func TestAggregate_RevenueAndCounts(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	orders := []database.Order{
		completedOrder("525.00", enum.PaymentModeCash, base, 20),
		completedOrder("315.00", enum.PaymentModeUPI, base.Add(time.Hour), 30),
		{ID: uuid.New(), Status: enum.OrderStatusCancelled, TotalPrice: makeNumeric("100.00"), CreatedAt: base},
		{ID: uuid.New(), Status: enum.OrderStatusPreparing, TotalPrice: makeNumeric("50.00"), CreatedAt: base},
	}

	s := Aggregate(orders, nil)

	if s.TotalOrders != 4 {
		t.Errorf("total orders: got %d, want 4", s.TotalOrders)
	}
	if s.CompletedOrders != 2 {
		t.Errorf("completed: got %d, want 2", s.CompletedOrders)
	}
	if s.CancelledOrders != 1 {
		t.Errorf("cancelled: got %d, want 1", s.CancelledOrders)
	}
	if !s.Revenue.Equal(mustDecimal(t, "840.00")) {
		t.Errorf("revenue: got %v, want 840.00", s.Revenue)
	}
	if !s.RevenueLost.Equal(mustDecimal(t, "100.00")) {
		t.Errorf("revenue lost: got %v, want 100.00", s.RevenueLost)
	}
	if !s.AvgOrderValue.Equal(mustDecimal(t, "420.00")) {
		t.Errorf("avg order value: got %v, want 420.00", s.AvgOrderValue)
	}
	if s.AvgPrepMinutes < 24.9 || s.AvgPrepMinutes > 25.1 {
		t.Errorf("avg prep minutes: got %v, want 25", s.AvgPrepMinutes)
	}
	// 840 / 1.05 = 800 taxable, 20 each side.
	if !s.Subtotal.Equal(mustDecimal(t, "800.00")) {
		t.Errorf("subtotal: got %v, want 800.00", s.Subtotal)
	}
	if !s.Cgst.Equal(mustDecimal(t, "20.00")) || !s.Sgst.Equal(s.Cgst) {
		t.Errorf("tax split: cgst %v sgst %v, want 20.00 each", s.Cgst, s.Sgst)
	}
}

func TestAggregate_PrepTimeSanityFilter(t *testing.T) {
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	orders := []database.Order{
		completedOrder("100.00", enum.PaymentModeCash, base, 30),
		// Closed three days later; excluded from the average.
		completedOrder("100.00", enum.PaymentModeCash, base, 3*24*60),
		// Negative delta; excluded.
		completedOrder("100.00", enum.PaymentModeCash, base, -5),
	}

	s := Aggregate(orders, nil)
	if s.AvgPrepMinutes < 29.9 || s.AvgPrepMinutes > 30.1 {
		t.Errorf("avg prep minutes: got %v, want 30 (outliers excluded)", s.AvgPrepMinutes)
	}
}

func TestAggregate_ItemsScopedToCompletedOrders(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	done := completedOrder("525.00", enum.PaymentModeCard, base, 15)
	cancelled := database.Order{ID: uuid.New(), Status: enum.OrderStatusCancelled, CreatedAt: base}

	items := []database.OrderItemDetailRow{
		{
			OrderItem: database.OrderItem{OrderID: done.ID, Quantity: 3, PriceAtOrder: makeNumeric("100.00")},
			Name:      "Veg Burger", Category: "Mains",
		},
		{
			OrderItem: database.OrderItem{OrderID: done.ID, Quantity: 1, PriceAtOrder: makeNumeric("225.00")},
			Name:      "Pasta", Category: "Mains",
		},
		{
			OrderItem: database.OrderItem{OrderID: cancelled.ID, Quantity: 5, PriceAtOrder: makeNumeric("100.00")},
			Name:      "Veg Burger", Category: "Mains",
		},
	}

	s := Aggregate([]database.Order{done, cancelled}, items)

	if len(s.TopItems) != 2 {
		t.Fatalf("top items: got %d, want 2", len(s.TopItems))
	}
	if s.TopItems[0].Name != "Veg Burger" || s.TopItems[0].Quantity != 3 {
		t.Errorf("top item: got %+v, cancelled order items must not count", s.TopItems[0])
	}
	if len(s.Categories) != 1 || s.Categories[0].Quantity != 4 {
		t.Errorf("categories: got %+v, want Mains with qty 4", s.Categories)
	}
	if !s.Categories[0].Revenue.Equal(mustDecimal(t, "525.00")) {
		t.Errorf("category revenue: got %v, want 525.00", s.Categories[0].Revenue)
	}
}

func TestAggregate_PaymentModesAndDailyTrend(t *testing.T) {
	day1 := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	orders := []database.Order{
		completedOrder("100.00", enum.PaymentModeCash, day1, 10),
		completedOrder("200.00", enum.PaymentModeCash, day2, 10),
		completedOrder("300.00", enum.PaymentModeUPI, day2, 10),
	}

	s := Aggregate(orders, nil)

	if len(s.PaymentModes) != 2 {
		t.Fatalf("payment modes: got %d, want 2", len(s.PaymentModes))
	}
	// Sorted by mode name: CASH then UPI.
	if s.PaymentModes[0].Mode != enum.PaymentModeCash || s.PaymentModes[0].Orders != 2 {
		t.Errorf("cash split: %+v", s.PaymentModes[0])
	}
	if !s.PaymentModes[0].Revenue.Equal(mustDecimal(t, "300.00")) {
		t.Errorf("cash revenue: got %v, want 300.00", s.PaymentModes[0].Revenue)
	}

	if len(s.DailyTrend) != 2 {
		t.Fatalf("daily trend: got %d, want 2", len(s.DailyTrend))
	}
	if s.DailyTrend[0].Date != "2026-08-20" || s.DailyTrend[1].Date != "2026-08-21" {
		t.Errorf("trend dates out of order: %+v", s.DailyTrend)
	}
	if s.DailyTrend[1].Orders != 2 || !s.DailyTrend[1].Revenue.Equal(mustDecimal(t, "500.00")) {
		t.Errorf("day 2 trend: %+v", s.DailyTrend[1])
	}
}

func TestAggregate_MoneyMarshalsWithPaise(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	// Whole-rupee numeric: without rescaling this marshals as "500".
	s := Aggregate([]database.Order{completedOrder("500", enum.PaymentModeCash, base, 10)}, nil)

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	for _, want := range []string{`"revenue":"500.00"`, `"revenue_lost":"0.00"`, `"avg_order_value":"500.00"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("summary JSON missing %s: %s", want, b)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil, nil)
	if s.TotalOrders != 0 || !s.Revenue.IsZero() || !s.AvgOrderValue.IsZero() {
		t.Errorf("empty aggregate not zeroed: %+v", s)
	}
}

func TestWriteCSV_BOMAndSections(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	orders := []database.Order{completedOrder("525.00", enum.PaymentModeCash, base, 20)}
	s := Aggregate(orders, nil)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s, orders); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out := buf.Bytes()
	if len(out) < 3 || out[0] != 0xEF || out[1] != 0xBB || out[2] != 0xBF {
		t.Error("csv export must start with a UTF-8 BOM")
	}
	text := string(out)
	for _, section := range []string{"SALES SUMMARY", "Revenue Lost (Cancellations)", "TAX BREAKDOWN", "PAYMENT MODES", "TOP ITEMS", "CATEGORY PERFORMANCE", "DAILY TREND", "ORDERS"} {
		if !strings.Contains(text, section) {
			t.Errorf("missing section %q", section)
		}
	}
	if !strings.Contains(text, "525.00") {
		t.Error("order total missing from export")
	}
}

func TestWriteSessionsCSV(t *testing.T) {
	sessions := []database.AdminSession{
		{Code: "EMP1001", FullName: "Asha Rao", Role: enum.RoleCashier, LoginAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	if err := WriteSessionsCSV(&buf, sessions); err != nil {
		t.Fatalf("write sessions csv: %v", err)
	}
	text := buf.String()
	if !strings.Contains(text, "EMP1001") || !strings.Contains(text, "Asha Rao") {
		t.Errorf("session row missing: %q", text)
	}
	if !strings.HasPrefix(text, "\xEF\xBB\xBF") {
		t.Error("sessions export must start with a UTF-8 BOM")
	}
}
