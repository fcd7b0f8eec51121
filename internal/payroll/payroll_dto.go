package payroll

type CalculatePreviewRequest struct {
	EmployeeIDs []uint `json:"employee_ids" binding:"required,min=1"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	// DeductionIDs overrides the derived deduction set for ad-hoc previews.
	DeductionIDs []string `json:"deduction_ids"`
}

type PreviewItemResponse struct {
	EmployeeID       uint               `json:"employee_id"`
	EmployeeName     string             `json:"employee_name"`
	GrossPay         float64            `json:"gross_pay"`
	TotalAllowances  float64            `json:"total_allowances"`
	TotalDeductions  float64            `json:"total_deductions"`
	NetPay           float64            `json:"net_pay"`
	DeductionDetails map[string]float64 `json:"deduction_details"`
	AllowanceDetails map[string]float64 `json:"allowance_details"`
}

type PayslipItemInput struct {
	EmployeeID       uint               `json:"employee_id" binding:"required"`
	GrossPay         float64            `json:"gross_pay"`
	TotalAllowances  float64            `json:"total_allowances"`
	TotalDeductions  float64            `json:"total_deductions"`
	NetPay           float64            `json:"net_pay"`
	DaysPresent      float64            `json:"days_present"`
	DoublePayDays    float64            `json:"double_pay_days"`
	DoublePayAmount  float64            `json:"double_pay_amount"`
	DeductionDetails map[string]float64 `json:"deduction_details"`
	AllowanceDetails map[string]float64 `json:"allowance_details"`
}

type CreateRunRequest struct {
	PeriodStart string             `json:"period_start" binding:"required"`
	PeriodEnd   string             `json:"period_end" binding:"required"`
	Status      string             `json:"status" binding:"omitempty,oneof=DRAFT FINALIZED"`
	Items       []PayslipItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateRunRequest is a partial update: nil fields are left untouched.
// Supplying Items replaces the run's whole payslip set.
type UpdateRunRequest struct {
	PeriodStart *string            `json:"period_start"`
	PeriodEnd   *string            `json:"period_end"`
	Status      *string            `json:"status" binding:"omitempty,oneof=DRAFT FINALIZED"`
	Items       []PayslipItemInput `json:"items" binding:"omitempty,min=1,dive"`
}

type GetRunsFilterRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=DRAFT FINALIZED"`
}

type PayslipResponse struct {
	ID               uint               `json:"id"`
	PayrollRunID     uint               `json:"payroll_run_id"`
	EmployeeID       uint               `json:"employee_id"`
	GrossPay         float64            `json:"gross_pay"`
	TotalAllowances  float64            `json:"total_allowances"`
	TotalDeductions  float64            `json:"total_deductions"`
	NetPay           float64            `json:"net_pay"`
	DaysPresent      float64            `json:"days_present"`
	DoublePayDays    float64            `json:"double_pay_days"`
	DoublePayAmount  float64            `json:"double_pay_amount"`
	DeductionDetails map[string]float64 `json:"deduction_details"`
	AllowanceDetails map[string]float64 `json:"allowance_details"`
}

type RunResponse struct {
	ID           uint    `json:"id"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	Status       string  `json:"status"`
	TotalAmount  float64 `json:"total_amount"`
	PayslipCount int     `json:"payslip_count"`
	CreatedBy    string  `json:"created_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type RunDetailResponse struct {
	RunResponse
	Payslips []PayslipResponse `json:"payslips"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Total    float64 `json:"total"`
}

type RunBreakdownResponse struct {
	RunID       uint            `json:"run_id"`
	Status      string          `json:"status"`
	TotalAmount float64         `json:"total_amount"`
	Categories  []CategoryTotal `json:"categories"`
}
