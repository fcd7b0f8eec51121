package events

import "time"

const PayrollRunFinalizedTopic = "hr.payroll.run.finalized.v1"

type PayrollRunFinalizedEvent struct {
	EventType    string    `json:"event_type"`
	RunID        uint      `json:"run_id"`
	PeriodStart  string    `json:"period_start"`
	PeriodEnd    string    `json:"period_end"`
	TotalAmount  float64   `json:"total_amount"`
	PayslipCount int       `json:"payslip_count"`
	FinalizedBy  string    `json:"finalized_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}
