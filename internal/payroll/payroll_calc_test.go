package payroll_test

import (
	"encoding/json"
	"testing"

	"hr-payroll/internal/employee"
	"hr-payroll/internal/payroll"

	"github.com/stretchr/testify/assert"
)

func allCategories() map[string]bool {
	cfg := payroll.DefaultPolicyConfig()
	active := make(map[string]bool, len(cfg.AlwaysOn))
	for _, id := range cfg.AlwaysOn {
		active[id] = true
	}
	return active
}

func activeEmployee(id uint, profile *employee.SalaryProfile) employee.Employee {
	return employee.Employee{
		ID:               id,
		FullName:         "Maria Santos",
		EmploymentStatus: employee.StatusActive,
		SalaryProfile:    profile,
	}
}

func TestCompute_SemiMonthlyScenario(t *testing.T) {
	profile := &employee.SalaryProfile{
		BasicSalary: 13710,
		DailyRate:   457,
		Allowances:  map[string]employee.Amount{"special": 1500},
		Deductions: employee.Deductions{
			PhilhealthContribution: 285,
			PagibigContribution:    200,
			CompanyCashFund:        300,
			SSSLoan:                &employee.LoanAccount{Balance: 20000, Amortization: 1292.06},
			PagibigLoan:            &employee.LoanAccount{Balance: 35000, Amortization: 1783.16},
		},
	}

	result := payroll.Compute(activeEmployee(7, profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.NotNil(t, result)
	assert.Equal(t, uint(7), result.EmployeeID)
	assert.InDelta(t, 6855, result.GrossPay, 0.001)
	assert.InDelta(t, 750, result.TotalAllowances, 0.001)
	assert.InDelta(t, 3860.22, result.TotalDeductions, 0.001)
	assert.InDelta(t, 3744.78, result.NetPay, 0.001)

	assert.InDelta(t, 750, result.AllowanceDetails["special"], 0.001)
	assert.InDelta(t, 285, result.DeductionDetails[payroll.CategoryPhilhealth], 0.001)
	assert.InDelta(t, 200, result.DeductionDetails[payroll.CategoryPagibig], 0.001)
	assert.InDelta(t, 300, result.DeductionDetails[payroll.CategoryCompanyCashFund], 0.001)
	assert.InDelta(t, 1292.06, result.DeductionDetails[payroll.CategorySSSLoan], 0.001)
	assert.InDelta(t, 1783.16, result.DeductionDetails[payroll.CategoryPagibigLoan], 0.001)
	_, hasSSS := result.DeductionDetails[payroll.CategorySSS]
	assert.False(t, hasSSS)
}

func TestCompute_LoanChargeCappedAtBalance(t *testing.T) {
	profile := &employee.SalaryProfile{
		DailyRate: 500,
		Deductions: employee.Deductions{
			CompanyLoan: &employee.LoanAccount{Balance: 400, Amortization: 1000},
		},
	}

	result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.InDelta(t, 400, result.DeductionDetails[payroll.CategoryCompanyLoan], 0.001)
	assert.InDelta(t, 0, result.DeductionDetails[payroll.DetailCompanyLoanBalance], 0.001)
	assert.InDelta(t, 400, result.TotalDeductions, 0.001)
}

func TestCompute_CompanyLoanBalanceSnapshot(t *testing.T) {
	profile := &employee.SalaryProfile{
		DailyRate: 500,
		Deductions: employee.Deductions{
			CompanyLoan: &employee.LoanAccount{Balance: 5000, Amortization: 1500},
		},
	}

	result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.InDelta(t, 1500, result.DeductionDetails[payroll.CategoryCompanyLoan], 0.001)
	assert.InDelta(t, 3500, result.DeductionDetails[payroll.DetailCompanyLoanBalance], 0.001)
}

func TestCompute_LoanWithoutAmortizationNotCharged(t *testing.T) {
	profile := &employee.SalaryProfile{
		DailyRate: 500,
		Deductions: employee.Deductions{
			SSSLoan: &employee.LoanAccount{Balance: 9000},
		},
	}

	result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.InDelta(t, 0, result.TotalDeductions, 0.001)
	assert.Empty(t, result.DeductionDetails)
}

func TestCompute_CashAdvanceShapes(t *testing.T) {
	t.Run("scalar collects full balance", func(t *testing.T) {
		profile := &employee.SalaryProfile{
			DailyRate: 500,
			Deductions: employee.Deductions{
				CashAdvance: &employee.CashAdvance{Balance: 2500, Scalar: true},
			},
		}

		result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())
		assert.InDelta(t, 2500, result.DeductionDetails[payroll.CategoryCashAdvance], 0.001)
	})

	t.Run("structured without amortization collects full balance", func(t *testing.T) {
		profile := &employee.SalaryProfile{
			DailyRate: 500,
			Deductions: employee.Deductions{
				CashAdvance: &employee.CashAdvance{Balance: 2500},
			},
		}

		result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())
		assert.InDelta(t, 2500, result.DeductionDetails[payroll.CategoryCashAdvance], 0.001)
	})

	t.Run("structured amortized collects the installment", func(t *testing.T) {
		profile := &employee.SalaryProfile{
			DailyRate: 500,
			Deductions: employee.Deductions{
				CashAdvance: &employee.CashAdvance{Balance: 2500, Amortization: 500},
			},
		}

		result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())
		assert.InDelta(t, 500, result.DeductionDetails[payroll.CategoryCashAdvance], 0.001)
	})
}

func TestCompute_OtherDeductionsListedByName(t *testing.T) {
	profile := &employee.SalaryProfile{
		DailyRate: 500,
		Deductions: employee.Deductions{
			OtherDeductions: []employee.OtherDeduction{
				{Name: "uniform", Amount: 150},
				{Name: "canteen", Amount: 320.50},
			},
		},
	}

	result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.InDelta(t, 150, result.DeductionDetails["uniform"], 0.001)
	assert.InDelta(t, 320.50, result.DeductionDetails["canteen"], 0.001)
	assert.InDelta(t, 470.50, result.DeductionDetails[payroll.DetailOtherDeductionsSum], 0.001)
	assert.InDelta(t, 470.50, result.TotalDeductions, 0.001)
}

func TestCompute_SkipsResignedAndTerminated(t *testing.T) {
	profile := &employee.SalaryProfile{DailyRate: 500}

	for _, status := range []string{employee.StatusResigned, employee.StatusTerminated} {
		emp := employee.Employee{ID: 3, EmploymentStatus: status, SalaryProfile: profile}
		assert.Nil(t, payroll.Compute(emp, payroll.DefaultPolicyConfig(), allCategories()), status)
	}
}

func TestCompute_MissingProfileYieldsZeroRow(t *testing.T) {
	result := payroll.Compute(activeEmployee(9, nil), payroll.DefaultPolicyConfig(), allCategories())

	assert.NotNil(t, result)
	assert.Equal(t, uint(9), result.EmployeeID)
	assert.Zero(t, result.GrossPay)
	assert.Zero(t, result.NetPay)
	assert.Empty(t, result.DeductionDetails)
}

func TestCompute_NoDeductionsNetIsGrossPlusAllowances(t *testing.T) {
	profile := &employee.SalaryProfile{
		DailyRate:  610,
		Allowances: map[string]employee.Amount{"meal": 1000},
	}

	result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.InDelta(t, 9150, result.GrossPay, 0.001)
	assert.InDelta(t, 9650, result.NetPay, 0.001)
}

func TestCompute_NetPayCanGoNegative(t *testing.T) {
	profile := &employee.SalaryProfile{
		DailyRate: 100,
		Deductions: employee.Deductions{
			CompanyLoan: &employee.LoanAccount{Balance: 50000, Amortization: 5000},
		},
	}

	result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.InDelta(t, -3500, result.NetPay, 0.001)
}

func TestCompute_InactiveCategoriesAreSkipped(t *testing.T) {
	profile := &employee.SalaryProfile{
		DailyRate: 500,
		Deductions: employee.Deductions{
			PhilhealthContribution: 285,
			PagibigContribution:    200,
			CompanyLoan:            &employee.LoanAccount{Balance: 5000, Amortization: 1000},
		},
	}

	active := map[string]bool{payroll.CategoryPhilhealth: true}
	result := payroll.Compute(activeEmployee(1, profile), payroll.DefaultPolicyConfig(), active)

	assert.InDelta(t, 285, result.TotalDeductions, 0.001)
	_, hasLoan := result.DeductionDetails[payroll.CategoryCompanyLoan]
	assert.False(t, hasLoan)
}

func TestCompute_CoercedStringAmounts(t *testing.T) {
	raw := `{
		"basicSalary": "13710",
		"dailyRate": "457",
		"allowances": {"special": "1500"},
		"deductions": {
			"philhealthContribution": "285",
			"pagibigContribution": null,
			"sssLoan": {"balance": "20000", "amortization": "not-a-number"}
		}
	}`

	var profile employee.SalaryProfile
	assert.NoError(t, json.Unmarshal([]byte(raw), &profile))

	result := payroll.Compute(activeEmployee(1, &profile), payroll.DefaultPolicyConfig(), allCategories())

	assert.InDelta(t, 6855, result.GrossPay, 0.001)
	assert.InDelta(t, 750, result.TotalAllowances, 0.001)
	// Unparseable amortization coerces to zero, so the loan is idle.
	assert.InDelta(t, 285, result.TotalDeductions, 0.001)
}
