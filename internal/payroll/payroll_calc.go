package payroll

import (
	"math"

	"hr-payroll/internal/employee"
)

// PayComputation is one employee's computed pay for a cutoff. It is the
// transient source a Payslip is built from and is never persisted itself.
type PayComputation struct {
	EmployeeID      uint
	GrossPay        float64
	TotalAllowances float64
	TotalDeductions float64
	NetPay          float64
	DaysPresent     float64
	DoublePayDays   float64
	DoublePayAmount float64

	DeductionDetails DetailMap
	AllowanceDetails DetailMap
}

// Compute derives one employee's pay from the static salary profile and the
// active deduction set. It is pure: the employee record is never mutated
// here, loan balances only move when a run is finalized.
//
// Resigned and terminated employees return nil (skipped). An employee with
// no salary profile returns a zero-valued computation instead of nil so
// batch totals stay stable and the empty row stays visible to payroll staff.
func Compute(emp employee.Employee, cfg PolicyConfig, active map[string]bool) *PayComputation {
	if !emp.Payable() {
		return nil
	}

	result := &PayComputation{
		EmployeeID:       emp.ID,
		DeductionDetails: DetailMap{},
		AllowanceDetails: DetailMap{},
	}

	profile := emp.SalaryProfile
	if profile == nil {
		return result
	}

	// Gross pay is a fixed number of daily rates per cutoff, independent of
	// attendance. See PolicyConfig.GrossPayDays.
	gross := profile.DailyRate.Float() * cfg.GrossPayDays

	// Allowances are configured as a monthly total and halved per
	// semi-monthly run.
	var allowances float64
	for name, v := range profile.Allowances {
		half := v.Float() / 2
		if half != 0 {
			result.AllowanceDetails[name] = half
		}
		allowances += half
	}

	var deductions float64
	d := profile.Deductions

	addFixed := func(id string, amount float64) {
		if !active[id] || amount <= 0 {
			return
		}
		result.DeductionDetails[id] = amount
		deductions += amount
	}

	addLoan := func(id string, loan *employee.LoanAccount) float64 {
		if !active[id] {
			return 0
		}
		due := loan.Due()
		if due <= 0 {
			return 0
		}
		result.DeductionDetails[id] = due
		deductions += due
		return due
	}

	addFixed(CategoryPagibig, d.PagibigContribution.Float())
	addFixed(CategoryCompanyCashFund, d.CompanyCashFund.Float())
	addFixed(CategoryPhilhealth, d.PhilhealthContribution.Float())
	addFixed(CategorySSS, d.SSSContribution.Float())

	addLoan(CategorySSSLoan, d.SSSLoan)

	if due := addLoan(CategoryCompanyLoan, d.CompanyLoan); due > 0 {
		// Remaining balance after this charge, for display. The stored
		// balance does not move until the run is finalized.
		result.DeductionDetails[DetailCompanyLoanBalance] = sanitize(d.CompanyLoan.Balance.Float() - due)
	}

	if active[CategoryCashAdvance] {
		if due := d.CashAdvance.Due(); due > 0 {
			result.DeductionDetails[CategoryCashAdvance] = due
			deductions += due
		}
	}

	addLoan(CategoryPagibigLoan, d.PagibigLoan)

	if active[CategoryOtherDeductions] {
		var sum float64
		for _, od := range d.OtherDeductions {
			amount := od.Amount.Float()
			if amount <= 0 {
				continue
			}
			result.DeductionDetails[od.Name] = amount
			sum += amount
		}
		if sum > 0 {
			result.DeductionDetails[DetailOtherDeductionsSum] = sum
			deductions += sum
		}
	}

	result.GrossPay = sanitize(gross)
	result.TotalAllowances = sanitize(allowances)
	result.TotalDeductions = sanitize(deductions)
	// Net pay is deliberately not clamped at zero: a negative net signals
	// over-deduction that payroll staff must resolve by hand.
	result.NetPay = sanitize(result.GrossPay + result.TotalAllowances - result.TotalDeductions)

	return result
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
