package payroll

import "time"

// Deduction category ids. These double as keys of the salary profile
// document and of the payslip deduction details map, so they must not be
// renamed without migrating stored documents.
const (
	CategorySSS             = "sss"
	CategoryPhilhealth      = "philhealth"
	CategoryPagibig         = "pagibig"
	CategoryCompanyCashFund = "companyCashFund"
	CategorySSSLoan         = "sssLoan"
	CategoryCompanyLoan     = "companyLoan"
	CategoryPagibigLoan     = "pagibigLoan"
	CategoryCashAdvance     = "cashAdvance"
	CategoryOtherDeductions = "otherDeductions"

	// Extra detail keys surfaced alongside the category charges.
	DetailCompanyLoanBalance = "companyLoan_balance"
	DetailOtherDeductionsSum = "other_deductions"
)

// PolicyConfig carries the cutoff-phase thresholds and category lists that
// drive deduction selection. It is passed in rather than hardcoded so
// boundary days can be exercised deterministically in tests.
type PolicyConfig struct {
	// GrossPayDays is the fixed number of daily rates paid per semi-monthly
	// cutoff. Attendance in the period does not enter gross pay.
	GrossPayDays float64

	// Mid-month cutoffs end on a day inside [MidMonthFrom, MidMonthTo].
	MidMonthFrom int
	MidMonthTo   int

	// End-of-month cutoffs end on day >= EndMonthFrom, or spill into the
	// first EndMonthSpill days of the next month (short months, holidays).
	EndMonthFrom  int
	EndMonthSpill int

	// AlwaysOn categories are charged on every run regardless of phase.
	AlwaysOn []string

	// LoanCategories are the balance-backed categories whose charges are
	// written back to the employee record when a run is finalized.
	LoanCategories []string
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		GrossPayDays:  15,
		MidMonthFrom:  10,
		MidMonthTo:    15,
		EndMonthFrom:  25,
		EndMonthSpill: 5,
		AlwaysOn: []string{
			CategorySSSLoan,
			CategoryPagibigLoan,
			CategoryCompanyLoan,
			CategoryCashAdvance,
			CategoryOtherDeductions,
			CategoryPhilhealth,
			CategoryPagibig,
			CategorySSS,
			CategoryCompanyCashFund,
		},
		LoanCategories: []string{
			CategoryCompanyLoan,
			CategorySSSLoan,
			CategoryPagibigLoan,
		},
	}
}

type CutoffPhase struct {
	Is15th bool
	IsEnd  bool
}

// Phase classifies a cutoff end date. A zero date classifies as neither
// phase, leaving only the always-on categories active.
func (c PolicyConfig) Phase(cutoffEnd time.Time) CutoffPhase {
	if cutoffEnd.IsZero() {
		return CutoffPhase{}
	}
	day := cutoffEnd.Day()
	return CutoffPhase{
		Is15th: day >= c.MidMonthFrom && day <= c.MidMonthTo,
		IsEnd:  day >= c.EndMonthFrom || (day >= 1 && day <= c.EndMonthSpill),
	}
}

// Resolve returns the set of deduction categories active for a run ending
// at cutoffEnd. An explicit id list (the ad-hoc preview override) is
// returned verbatim. Otherwise the phase is derived from the cutoff day,
// but note that every default category is currently charged on both
// cutoffs; the phase only matters once a category moves out of AlwaysOn.
func (c PolicyConfig) Resolve(cutoffEnd time.Time, explicit []string) map[string]bool {
	active := make(map[string]bool)

	if len(explicit) > 0 {
		for _, id := range explicit {
			active[id] = true
		}
		return active
	}

	_ = c.Phase(cutoffEnd)
	for _, id := range c.AlwaysOn {
		active[id] = true
	}
	return active
}
