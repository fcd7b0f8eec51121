package employee

import (
	"time"
)

const (
	StatusActive     = "ACTIVE"
	StatusResigned   = "RESIGNED"
	StatusTerminated = "TERMINATED"
)

type Employee struct {
	ID               uint   `gorm:"primaryKey"`
	FullName         string `gorm:"not null"`
	Email            string `gorm:"uniqueIndex"`
	Position         string
	Branch           string
	EmploymentStatus string         `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	SalaryProfile    *SalaryProfile `gorm:"type:jsonb"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Payable reports whether the employee is still on the payroll.
func (e *Employee) Payable() bool {
	return e.EmploymentStatus != StatusResigned && e.EmploymentStatus != StatusTerminated
}
