package accounting

// DocType identifies the kind of document a line or header belongs to.
// Orders (purchase/sales) and financial documents (vendor bill/customer invoice)
// share one structural shape but follow different lifecycle machines.
type DocType string

const (
	DocTypeVendorBill      DocType = "VENDOR_BILL"
	DocTypeCustomerInvoice DocType = "CUSTOMER_INVOICE"
	DocTypePurchaseOrder   DocType = "PURCHASE_ORDER"
	DocTypeSalesOrder      DocType = "SALES_ORDER"
)

// IsValid checks if the doc type is a valid DocType
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeVendorBill, DocTypeCustomerInvoice, DocTypePurchaseOrder, DocTypeSalesOrder:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (t DocType) String() string {
	return string(t)
}

// IsOrder returns true for purchase and sales orders
func (t DocType) IsOrder() bool {
	return t == DocTypePurchaseOrder || t == DocTypeSalesOrder
}

// IsFinancial returns true for documents that carry a payment state
// and can be targeted by payment allocations.
func (t DocType) IsFinancial() bool {
	return t == DocTypeVendorBill || t == DocTypeCustomerInvoice
}
