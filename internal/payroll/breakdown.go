package payroll

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Display labels for the statutory categories whose ids don't titlecase
// cleanly. Anything else (e.g. ad-hoc other-deduction names) falls through
// to the generic formatter.
var categoryLabels = map[string]string{
	CategorySSS:              "SSS",
	CategoryPhilhealth:       "PhilHealth",
	CategoryPagibig:          "Pag-IBIG",
	CategoryCompanyCashFund:  "Company Cash Fund",
	CategorySSSLoan:          "SSS Loan",
	CategoryCompanyLoan:      "Company Loan",
	CategoryPagibigLoan:      "Pag-IBIG Loan",
	CategoryCashAdvance:      "Cash Advance",
	CategoryOtherDeductions:  "Other Deductions",
	DetailOtherDeductionsSum: "Other Deductions",
}

func CategoryLabel(id string) string {
	if label, ok := categoryLabels[id]; ok {
		return label
	}

	// companyLoan -> company Loan -> Company Loan
	var b strings.Builder
	for i, r := range id {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	s := strings.ReplaceAll(b.String(), "_", " ")

	caser := cases.Title(language.English)
	return caser.String(s)
}
