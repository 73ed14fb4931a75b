// Package report derives sales analytics from raw order rows. Everything
// here is a pure computation over data the caller already fetched; nothing
// is persisted.
package report

import (
	"sort"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Prep durations outside this window are treated as data artifacts
// (clock skew, orders closed days later) and excluded from the average.
const maxPrepMinutes = 120.0

var (
	gstDivisor  = decimal.NewFromFloat(1.05)
	gstHalfRate = decimal.NewFromFloat(0.025)
)

type ItemSales struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type PaymentSplit struct {
	Mode    string          `json:"mode"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DailyPoint struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Summary is the full sales report for one time window.
type Summary struct {
	TotalOrders     int             `json:"total_orders"`
	CompletedOrders int             `json:"completed_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	Revenue         decimal.Decimal `json:"revenue"`
	RevenueLost     decimal.Decimal `json:"revenue_lost"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	AvgPrepMinutes  float64         `json:"avg_prep_minutes"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Cgst            decimal.Decimal `json:"cgst"`
	Sgst            decimal.Decimal `json:"sgst"`
	TopItems        []ItemSales     `json:"top_items"`
	Categories      []CategorySales `json:"categories"`
	PaymentModes    []PaymentSplit  `json:"payment_modes"`
	DailyTrend      []DailyPoint    `json:"daily_trend"`
}

// Aggregate computes the sales summary from raw order and line-item rows.
// Revenue counts completed orders only; item and category sales are scoped
// to those same orders so the parts always sum to the reported total.
func Aggregate(orders []database.Order, items []database.OrderItemDetailRow) Summary {
	s := Summary{
		TotalOrders: len(orders),
		Revenue:     decimal.Zero,
		RevenueLost: decimal.Zero,
	}

	completed := make(map[uuid.UUID]bool, len(orders))
	modeStats := make(map[string]*PaymentSplit)
	dayStats := make(map[string]*DailyPoint)

	var prepSum float64
	var prepCount int

	for _, o := range orders {
		switch o.Status {
		case enum.OrderStatusCompleted:
			s.CompletedOrders++
			completed[o.ID] = true
			total := numericToDecimal(o.TotalPrice)
			s.Revenue = s.Revenue.Add(total)

			if diff := o.UpdatedAt.Sub(o.CreatedAt).Minutes(); diff > 0 && diff < maxPrepMinutes {
				prepSum += diff
				prepCount++
			}

			mode := o.PaymentMode
			ms, ok := modeStats[mode]
			if !ok {
				ms = &PaymentSplit{Mode: mode, Revenue: decimal.Zero}
				modeStats[mode] = ms
			}
			ms.Orders++
			ms.Revenue = ms.Revenue.Add(total)

			day := o.CreatedAt.Format(time.DateOnly)
			ds, ok := dayStats[day]
			if !ok {
				ds = &DailyPoint{Date: day, Revenue: decimal.Zero}
				dayStats[day] = ds
			}
			ds.Orders++
			ds.Revenue = ds.Revenue.Add(total)
		case enum.OrderStatusCancelled:
			s.CancelledOrders++
			s.RevenueLost = s.RevenueLost.Add(numericToDecimal(o.TotalPrice))
		}
	}

	if s.CompletedOrders > 0 {
		s.AvgOrderValue = s.Revenue.Div(decimal.NewFromInt(int64(s.CompletedOrders))).Round(2)
	} else {
		s.AvgOrderValue = decimal.Zero
	}
	if prepCount > 0 {
		s.AvgPrepMinutes = prepSum / float64(prepCount)
	}

	s.Subtotal = s.Revenue.Div(gstDivisor).Round(2)
	s.Cgst = s.Subtotal.Mul(gstHalfRate).Round(2)
	s.Sgst = s.Cgst

	itemStats := make(map[string]*ItemSales)
	catStats := make(map[string]*CategorySales)
	for _, it := range items {
		if !completed[it.OrderID] {
			continue
		}
		lineRevenue := numericToDecimal(it.PriceAtOrder).Mul(decimal.NewFromInt32(it.Quantity))

		is, ok := itemStats[it.Name]
		if !ok {
			is = &ItemSales{Name: it.Name, Category: it.Category, Revenue: decimal.Zero}
			itemStats[it.Name] = is
		}
		is.Quantity += int64(it.Quantity)
		is.Revenue = is.Revenue.Add(lineRevenue)

		cs, ok := catStats[it.Category]
		if !ok {
			cs = &CategorySales{Category: it.Category, Revenue: decimal.Zero}
			catStats[it.Category] = cs
		}
		cs.Quantity += int64(it.Quantity)
		cs.Revenue = cs.Revenue.Add(lineRevenue)
	}

	s.TopItems = make([]ItemSales, 0, len(itemStats))
	for _, is := range itemStats {
		s.TopItems = append(s.TopItems, *is)
	}
	sort.Slice(s.TopItems, func(i, j int) bool {
		if s.TopItems[i].Quantity != s.TopItems[j].Quantity {
			return s.TopItems[i].Quantity > s.TopItems[j].Quantity
		}
		return s.TopItems[i].Name < s.TopItems[j].Name
	})
	if len(s.TopItems) > 10 {
		s.TopItems = s.TopItems[:10]
	}

	s.Categories = make([]CategorySales, 0, len(catStats))
	for _, cs := range catStats {
		s.Categories = append(s.Categories, *cs)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if !s.Categories[i].Revenue.Equal(s.Categories[j].Revenue) {
			return s.Categories[i].Revenue.GreaterThan(s.Categories[j].Revenue)
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})

	s.PaymentModes = make([]PaymentSplit, 0, len(modeStats))
	for _, ms := range modeStats {
		s.PaymentModes = append(s.PaymentModes, *ms)
	}
	sort.Slice(s.PaymentModes, func(i, j int) bool {
		return s.PaymentModes[i].Mode < s.PaymentModes[j].Mode
	})

	s.DailyTrend = make([]DailyPoint, 0, len(dayStats))
	for _, ds := range dayStats {
		s.DailyTrend = append(s.DailyTrend, *ds)
	}
	sort.Slice(s.DailyTrend, func(i, j int) bool {
		return s.DailyTrend[i].Date < s.DailyTrend[j].Date
	})

	// Money marshals with the decimal's own scale; pin everything to two
	// places so the JSON matches the paise-formatted strings the other
	// endpoints emit.
	s.Revenue = s.Revenue.Round(2)
	s.RevenueLost = s.RevenueLost.Round(2)
	s.AvgOrderValue = s.AvgOrderValue.Round(2)
	for i := range s.TopItems {
		s.TopItems[i].Revenue = s.TopItems[i].Revenue.Round(2)
	}
	for i := range s.Categories {
		s.Categories[i].Revenue = s.Categories[i].Revenue.Round(2)
	}
	for i := range s.PaymentModes {
		s.PaymentModes[i].Revenue = s.PaymentModes[i].Revenue.Round(2)
	}
	for i := range s.DailyTrend {
		s.DailyTrend[i].Revenue = s.DailyTrend[i].Revenue.Round(2)
	}

	return s
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}
