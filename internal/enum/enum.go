package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusNew       = "NEW"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusServed    = "SERVED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// statusFlow is the strict forward progression. Cancellation is reachable
// from any non-terminal state and is not part of the flow.
var statusFlow = []string{
	OrderStatusNew,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
	OrderStatusCompleted,
}

// NextOrderStatus returns the next status in the linear flow, or "" if the
// current status is terminal or unknown.
func NextOrderStatus(current string) string {
	for i, s := range statusFlow {
		if s == current && i+1 < len(statusFlow) {
			return statusFlow[i+1]
		}
	}
	return ""
}

// IsTerminalOrderStatus reports whether no further transitions are allowed.
func IsTerminalOrderStatus(s string) bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusReady,
		OrderStatusServed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ── Table occupancy ──

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusOccupied  = "OCCUPIED"
)

// ── Payment modes ──
// PENDING is the stored default before an order is billed; it is never a
// valid mode for settling an order.

const (
	PaymentModeCash    = "CASH"
	PaymentModeUPI     = "UPI"
	PaymentModeCard    = "CARD"
	PaymentModePending = "PENDING"
)

// IsSettlementPaymentMode reports whether the mode can settle an order.
func IsSettlementPaymentMode(s string) bool {
	switch s {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard:
		return true
	}
	return false
}

// ── Staff roles (CHECK constrained in DB) ──

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleEmployee   = "EMPLOYEE"
	RoleCashier    = "CASHIER"
)

func IsValidRole(s string) bool {
	switch s {
	case RoleSuperAdmin, RoleEmployee, RoleCashier:
		return true
	}
	return false
}

// ── Order origin ──

const (
	OrderOriginStaff  = "STAFF"
	OrderOriginOnline = "ONLINE"
)
