package domain

// InvoiceType distinguishes invoice variants.
type InvoiceType string

const (
	InvoiceTypeIndividual InvoiceType = "individual"
	InvoiceTypeCorporate  InvoiceType = "corporate"
)

// InvoiceInfo is the billing data printed on the invoice.
// Implemented only by IndividualInvoice and CorporateInvoice.
type InvoiceInfo interface {
	Type() InvoiceType
	BillTo() string
	isInvoiceInfo()
}

// IndividualInvoice bills a private person.
type IndividualInvoice struct {
	Name       string
	Surname    string
	NationalID string // 11 digits
}

func (IndividualInvoice) Type() InvoiceType { return InvoiceTypeIndividual }
func (i IndividualInvoice) BillTo() string  { return i.Name + " " + i.Surname }
func (IndividualInvoice) isInvoiceInfo()    {}

// CorporateInvoice bills a company.
type CorporateInvoice struct {
	CompanyName string
	TaxID       string // 10 digits
	Address     string
}

func (CorporateInvoice) Type() InvoiceType { return InvoiceTypeCorporate }
func (c CorporateInvoice) BillTo() string  { return c.CompanyName }
func (CorporateInvoice) isInvoiceInfo()    {}
