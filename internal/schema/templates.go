package schema

import "sort"

// templates holds the built-in extraction schemas for common document
// classes, built once at init from static field specs.
var templates = map[string]*ResponseFormat{
	"invoice": Build("invoice_schema", map[string]FieldSpec{
		"invoice_number": {Type: "string", Description: "Invoice identifier as printed on the document"},
		"issue_date":     {Type: "string", Description: "Date the invoice was issued"},
		"due_date":       {Type: "string", Description: "Payment due date"},
		"vendor_name":    {Type: "string", Description: "Name of the issuing company"},
		"vendor_address": {Type: "string", Description: "Address of the issuing company"},
		"customer_name":  {Type: "string", Description: "Name of the billed customer"},
		"currency":       {Type: "string", Description: "Currency code, e.g. USD"},
		"subtotal":       {Type: "number", Description: "Amount before tax"},
		"tax_amount":     {Type: "number", Description: "Total tax charged"},
		"total_amount":   {Type: "number", Description: "Final amount due"},
		"line_items": {Type: "array", Description: "Individual billed items", Items: &FieldSpec{
			Type: "object",
			Properties: map[string]FieldSpec{
				"description": {Type: "string", Description: "What the line covers"},
				"quantity":    {Type: "number", Description: "Units billed"},
				"unit_price":  {Type: "number", Description: "Price per unit"},
				"amount":      {Type: "number", Description: "Line total"},
			},
		}},
	}),
	"receipt": Build("receipt_schema", map[string]FieldSpec{
		"merchant_name":    {Type: "string", Description: "Store or merchant name"},
		"merchant_address": {Type: "string", Description: "Store address"},
		"transaction_date": {Type: "string", Description: "Date of purchase"},
		"transaction_time": {Type: "string", Description: "Time of purchase"},
		"payment_method":   {Type: "string", Description: "How the purchase was paid"},
		"tax_amount":       {Type: "number", Description: "Tax portion of the total"},
		"total_amount":     {Type: "number", Description: "Amount paid"},
		"items": {Type: "array", Description: "Purchased items", Items: &FieldSpec{
			Type: "object",
			Properties: map[string]FieldSpec{
				"name":     {Type: "string", Description: "Item name"},
				"quantity": {Type: "number", Description: "Units purchased"},
				"price":    {Type: "number", Description: "Item price"},
			},
		}},
	}),
	"business_card": Build("business_card_schema", map[string]FieldSpec{
		"name":      {Type: "string", Description: "Person's full name"},
		"company":   {Type: "string", Description: "Company or organization"},
		"job_title": {Type: "string", Description: "Role or title"},
		"email":     {Type: "string", Description: "Email address"},
		"phone":     {Type: "string", Description: "Office phone number"},
		"mobile":    {Type: "string", Description: "Mobile phone number"},
		"address":   {Type: "string", Description: "Postal address"},
		"website":   {Type: "string", Description: "Company or personal website"},
	}),
	"contract": Build("contract_schema", map[string]FieldSpec{
		"title":              {Type: "string", Description: "Contract title"},
		"effective_date":     {Type: "string", Description: "Date the contract takes effect"},
		"expiration_date":    {Type: "string", Description: "Date the contract ends"},
		"governing_law":      {Type: "string", Description: "Jurisdiction governing the contract"},
		"payment_terms":      {Type: "string", Description: "Agreed payment conditions"},
		"termination_clause": {Type: "string", Description: "Conditions under which the contract terminates"},
		"parties": {Type: "array", Description: "Contracting parties", Items: &FieldSpec{
			Type: "object",
			Properties: map[string]FieldSpec{
				"name": {Type: "string", Description: "Party name"},
				"role": {Type: "string", Description: "Party role, e.g. buyer or seller"},
			},
		}},
	}),
}

// defaultCategories is the built-in classification schema used when the
// caller supplies none. The trailing "others" entry is the fallback label.
var defaultCategories = []Category{
	{Value: "invoice", Description: "Commercial invoice requesting payment"},
	{Value: "receipt", Description: "Proof of a completed purchase"},
	{Value: "contract", Description: "Legal agreement between parties"},
	{Value: "cv", Description: "Curriculum vitae or resume"},
	{Value: "bank_statement", Description: "Account activity summary issued by a bank"},
	{Value: "tax_document", Description: "Tax return, assessment, or related filing"},
	{Value: "insurance", Description: "Insurance policy or claim document"},
	{Value: "business_card", Description: "Personal or corporate contact card"},
	{Value: "medical_report", Description: "Clinical report or medical record"},
	{Value: "payslip", Description: "Salary or wage statement"},
	{Value: "id_card", Description: "Government or corporate identity document"},
	{Value: "letter", Description: "Formal or informal correspondence"},
	{Value: "others", Description: "Anything not covered by the categories above"},
}

// Template returns the built-in extraction template by name.
func Template(name string) (*ResponseFormat, bool) {
	t, ok := templates[name]
	return t, ok
}

// TemplateNames lists the built-in extraction templates in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultClassification returns the built-in classification envelope.
func DefaultClassification() *ResponseFormat {
	return BuildClassification("document-classify", defaultCategories)
}

// DefaultCategoryValues lists the labels of the built-in classification
// schema in declaration order.
func DefaultCategoryValues() []string {
	values := make([]string, len(defaultCategories))
	for i, c := range defaultCategories {
		values[i] = c.Value
	}
	return values
}
