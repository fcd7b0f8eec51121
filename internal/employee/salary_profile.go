package employee

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary scalar as it appears in legacy salary documents,
// where the same field may be stored as a number, a numeric string, or be
// missing entirely. Anything that fails to coerce reads as zero so bad data
// never poisons a batch computation.
type Amount float64

func (a Amount) Float() float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*a = 0
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var q string
		if err := json.Unmarshal(data, &q); err != nil {
			*a = 0
			return nil
		}
		s = strings.TrimSpace(q)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = 0
		return nil
	}

	*a = Amount(f)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Float())
}

// LoanAccount is a revolving loan: the balance shrinks by one amortization
// payment per pay period until it reaches zero.
type LoanAccount struct {
	Balance      Amount `json:"balance"`
	Amortization Amount `json:"amortization"`
}

// Due returns the charge for one period: the amortization, capped by the
// remaining balance. An absent or non-positive amortization charges nothing.
func (l *LoanAccount) Due() float64 {
	if l == nil {
		return 0
	}
	amort := l.Amortization.Float()
	if amort <= 0 {
		return 0
	}
	bal := l.Balance.Float()
	if bal < amort {
		return bal
	}
	return amort
}

// CashAdvance has accumulated three shapes over the years: a plain number,
// a numeric string, and a {balance, amortization} object. The union is
// resolved once here; the rest of the code only ever sees Due().
type CashAdvance struct {
	Balance      Amount
	Amortization Amount
	Scalar       bool
}

func (c *CashAdvance) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Balance      Amount `json:"balance"`
			Amortization Amount `json:"amortization"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			*c = CashAdvance{}
			return nil
		}
		*c = CashAdvance{Balance: obj.Balance, Amortization: obj.Amortization}
		return nil
	}

	var v Amount
	_ = json.Unmarshal(data, &v)
	*c = CashAdvance{Balance: v, Scalar: true}
	return nil
}

func (c CashAdvance) MarshalJSON() ([]byte, error) {
	if c.Scalar {
		return json.Marshal(c.Balance)
	}
	return json.Marshal(struct {
		Balance      Amount `json:"balance"`
		Amortization Amount `json:"amortization"`
	}{c.Balance, c.Amortization})
}

func (c *CashAdvance) Due() float64 {
	if c == nil {
		return 0
	}
	if c.Scalar {
		return c.Balance.Float()
	}
	amort := c.Amortization.Float()
	bal := c.Balance.Float()
	if amort <= 0 {
		return bal
	}
	if bal < amort {
		return bal
	}
	return amort
}

type OtherDeduction struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

type Deductions struct {
	SSSContribution        Amount `json:"sssContribution"`
	PhilhealthContribution Amount `json:"philhealthContribution"`
	PagibigContribution    Amount `json:"pagibigContribution"`
	CompanyCashFund        Amount `json:"companyCashFund"`

	CompanyLoan *LoanAccount `json:"companyLoan,omitempty"`
	SSSLoan     *LoanAccount `json:"sssLoan,omitempty"`
	PagibigLoan *LoanAccount `json:"pagibigLoan,omitempty"`
	CashAdvance *CashAdvance `json:"cashAdvance,omitempty"`

	OtherDeductions []OtherDeduction `json:"otherDeductions,omitempty"`
}

// SalaryProfile is the employee's static pay configuration, stored as a
// jsonb document on the employee row. It is read-only input to the payroll
// engine; only the finalize step of a payroll run writes loan balances back.
type SalaryProfile struct {
	BasicSalary Amount            `json:"basicSalary"`
	DailyRate   Amount            `json:"dailyRate"`
	Allowances  map[string]Amount `json:"allowances,omitempty"`
	Deductions  Deductions        `json:"deductions"`
}

// TotalAllowance sums every configured allowance bucket.
func (p *SalaryProfile) TotalAllowance() float64 {
	if p == nil {
		return 0
	}
	var total float64
	for _, v := range p.Allowances {
		total += v.Float()
	}
	return total
}

// LoanAccount returns the revolving loan behind a deduction category id,
// or nil when the category is not loan-backed or not configured.
func (p *SalaryProfile) LoanAccount(category string) *LoanAccount {
	if p == nil {
		return nil
	}
	switch category {
	case "companyLoan":
		return p.Deductions.CompanyLoan
	case "sssLoan":
		return p.Deductions.SSSLoan
	case "pagibigLoan":
		return p.Deductions.PagibigLoan
	}
	return nil
}

func (p SalaryProfile) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *SalaryProfile) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported salary profile column type")
	}
}
