package enums

// NotificationKind labels the storefront inbox entries.
type NotificationKind string

const (
	NotificationSupplierApproved NotificationKind = "supplier_approved"
	NotificationSupplierRejected NotificationKind = "supplier_rejected"
	NotificationSupplierPending  NotificationKind = "supplier_pending"
	NotificationOrderUpdate      NotificationKind = "order_update"
	NotificationPromo            NotificationKind = "promo"
)

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}
