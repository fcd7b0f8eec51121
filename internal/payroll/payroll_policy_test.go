package payroll_test

import (
	"testing"
	"time"

	"hr-payroll/internal/payroll"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestPolicyConfig_Phase(t *testing.T) {
	cfg := payroll.DefaultPolicyConfig()

	tests := []struct {
		name    string
		cutoff  time.Time
		want15  bool
		wantEnd bool
	}{
		{"day 10 opens mid-month window", day(10), true, false},
		{"day 15 closes mid-month window", day(15), true, false},
		{"day 9 is neither", day(9), false, false},
		{"day 16 is neither", day(16), false, false},
		{"day 25 opens end-of-month window", day(25), false, true},
		{"day 31 is end-of-month", day(31), false, true},
		{"day 24 is neither", day(24), false, false},
		{"day 5 spills into end-of-month", day(5), false, true},
		{"day 6 is past the spill window", day(6), false, false},
		{"day 1 spills into end-of-month", day(1), false, true},
		{"zero date is neither", time.Time{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase := cfg.Phase(tt.cutoff)
			assert.Equal(t, tt.want15, phase.Is15th)
			assert.Equal(t, tt.wantEnd, phase.IsEnd)
		})
	}
}

func TestPolicyConfig_Resolve_DefaultsToAlwaysOn(t *testing.T) {
	cfg := payroll.DefaultPolicyConfig()

	active := cfg.Resolve(day(15), nil)

	assert.Len(t, active, len(cfg.AlwaysOn))
	for _, id := range cfg.AlwaysOn {
		assert.True(t, active[id], id)
	}
}

func TestPolicyConfig_Resolve_ExplicitOverrideIsVerbatim(t *testing.T) {
	cfg := payroll.DefaultPolicyConfig()

	active := cfg.Resolve(day(31), []string{payroll.CategorySSSLoan, payroll.CategoryPhilhealth})

	assert.Len(t, active, 2)
	assert.True(t, active[payroll.CategorySSSLoan])
	assert.True(t, active[payroll.CategoryPhilhealth])
	assert.False(t, active[payroll.CategoryPagibig])
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "SSS Loan", payroll.CategoryLabel(payroll.CategorySSSLoan))
	assert.Equal(t, "Pag-IBIG", payroll.CategoryLabel(payroll.CategoryPagibig))
	// Unknown ids fall back to a humanized form of the key.
	assert.Equal(t, "Parking Fee", payroll.CategoryLabel("parkingFee"))
	assert.Equal(t, "Staff House", payroll.CategoryLabel("staff_house"))
}
