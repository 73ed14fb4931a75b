package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cafe-republic/api/internal/database"
)

// utf8BOM makes Excel detect the encoding; without it Indian item names
// render as mojibake.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders the sales report as a sectioned CSV document.
func WriteCSV(w io.Writer, s Summary, orders []database.Order) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"SALES SUMMARY"},
		{"Total Orders", strconv.Itoa(s.TotalOrders)},
		{"Completed Orders", strconv.Itoa(s.CompletedOrders)},
		{"Cancelled Orders", strconv.Itoa(s.CancelledOrders)},
		{"Revenue", s.Revenue.StringFixed(2)},
		{"Revenue Lost (Cancellations)", s.RevenueLost.StringFixed(2)},
		{"Average Order Value", s.AvgOrderValue.StringFixed(2)},
		{"Average Prep Time (min)", fmt.Sprintf("%.1f", s.AvgPrepMinutes)},
		{},
		{"TAX BREAKDOWN"},
		{"Taxable Value", s.Subtotal.StringFixed(2)},
		{"CGST (2.5%)", s.Cgst.StringFixed(2)},
		{"SGST (2.5%)", s.Sgst.StringFixed(2)},
		{},
		{"PAYMENT MODES"},
		{"Mode", "Orders", "Revenue"},
	}
	for _, pm := range s.PaymentModes {
		rows = append(rows, []string{pm.Mode, strconv.Itoa(pm.Orders), pm.Revenue.StringFixed(2)})
	}

	rows = append(rows, []string{}, []string{"TOP ITEMS"}, []string{"Item", "Category", "Quantity", "Revenue"})
	for _, it := range s.TopItems {
		rows = append(rows, []string{it.Name, it.Category, strconv.FormatInt(it.Quantity, 10), it.Revenue.StringFixed(2)})
	}

	rows = append(rows, []string{}, []string{"CATEGORY PERFORMANCE"}, []string{"Category", "Quantity", "Revenue"})
	for _, c := range s.Categories {
		rows = append(rows, []string{c.Category, strconv.FormatInt(c.Quantity, 10), c.Revenue.StringFixed(2)})
	}

	rows = append(rows, []string{}, []string{"DAILY TREND"}, []string{"Date", "Orders", "Revenue"})
	for _, d := range s.DailyTrend {
		rows = append(rows, []string{d.Date, strconv.Itoa(d.Orders), d.Revenue.StringFixed(2)})
	}

	rows = append(rows, []string{}, []string{"ORDERS"},
		[]string{"Order ID", "Table", "Status", "Total", "Paid", "Payment Mode", "Origin", "Created At"})
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID.String(),
			strconv.Itoa(int(o.TableNumber)),
			o.Status,
			numericToDecimal(o.TotalPrice).StringFixed(2),
			strconv.FormatBool(o.IsPaid),
			o.PaymentMode,
			o.Origin,
			o.CreatedAt.Format(time.RFC3339),
		})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSessionsCSV renders the login audit trail for export.
func WriteSessionsCSV(w io.Writer, sessions []database.AdminSession) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Employee ID", "Name", "Role", "Login At"}); err != nil {
		return err
	}
	for _, s := range sessions {
		if err := cw.Write([]string{
			s.Code,
			s.FullName,
			s.Role,
			s.LoginAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
