package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	StatusDraft     = "DRAFT"
	StatusFinalized = "FINALIZED"
)

// DetailMap stores per-category monetary details as a jsonb column.
type DetailMap map[string]float64

func (m DetailMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(DetailMap{})
	}
	return json.Marshal(m)
}

func (m *DetailMap) Scan(value interface{}) error {
	if value == nil {
		*m = DetailMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported detail map column type")
	}
}

// PayrollRun is a batch of payslips for one cutoff. TotalAmount is always
// the sum of its payslips' net pay. The DRAFT -> FINALIZED transition is
// one-way and is the only point where loan balances are written back to
// employee records.
type PayrollRun struct {
	ID          uint      `gorm:"primaryKey"`
	PeriodStart time.Time `gorm:"type:date;not null;index"`
	PeriodEnd   time.Time `gorm:"type:date;not null;index"`
	Status      string    `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	TotalAmount float64   `gorm:"type:numeric(14,2);not null;default:0"`
	CreatedBy   string    `gorm:"type:varchar(64)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Payslips []Payslip `gorm:"foreignKey:PayrollRunID;constraint:OnDelete:CASCADE"`
}

// Payslip is fully owned by its run: line-item edits replace the whole set,
// individual payslips are never patched.
type Payslip struct {
	ID           uint `gorm:"primaryKey"`
	PayrollRunID uint `gorm:"not null;index"`
	EmployeeID   uint `gorm:"not null;index"`

	GrossPay        float64 `gorm:"type:numeric(14,2);not null;default:0"`
	TotalAllowances float64 `gorm:"type:numeric(14,2);not null;default:0"`
	TotalDeductions float64 `gorm:"type:numeric(14,2);not null;default:0"`
	NetPay          float64 `gorm:"type:numeric(14,2);not null;default:0"`

	DaysPresent     float64 `gorm:"type:numeric(5,2);not null;default:0"`
	DoublePayDays   float64 `gorm:"type:numeric(5,2);not null;default:0"`
	DoublePayAmount float64 `gorm:"type:numeric(14,2);not null;default:0"`

	DeductionDetails DetailMap `gorm:"type:jsonb"`
	AllowanceDetails DetailMap `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
