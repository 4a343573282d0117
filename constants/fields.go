package constants

// Well-known field names produced by template rules. Templates may declare
// additional fields; these are the ones the invoice builder understands.
const (
	FieldSellerID      = "seller_id"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldTotalAmount   = "total_amount"
	FieldCurrency      = "currency"
	FieldDueDate       = "due_date"
	FieldReference     = "reference"
)
