package employee

type CreateEmployeeRequest struct {
	FullName         string         `json:"full_name" binding:"required"`
	Email            string         `json:"email" binding:"required,email"`
	Position         string         `json:"position"`
	Branch           string         `json:"branch"`
	EmploymentStatus string         `json:"employment_status" binding:"omitempty,oneof=ACTIVE RESIGNED TERMINATED"`
	SalaryProfile    *SalaryProfile `json:"salary_profile"`
}

type UpdateEmployeeRequest struct {
	FullName         string         `json:"full_name" binding:"required"`
	Email            string         `json:"email" binding:"required,email"`
	Position         string         `json:"position"`
	Branch           string         `json:"branch"`
	EmploymentStatus string         `json:"employment_status" binding:"required,oneof=ACTIVE RESIGNED TERMINATED"`
	SalaryProfile    *SalaryProfile `json:"salary_profile"`
}

type EmployeeResponse struct {
	ID               uint           `json:"id"`
	FullName         string         `json:"full_name"`
	Email            string         `json:"email"`
	Position         string         `json:"position"`
	Branch           string         `json:"branch"`
	EmploymentStatus string         `json:"employment_status"`
	SalaryProfile    *SalaryProfile `json:"salary_profile,omitempty"`
}

type EmployeeOptionResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}
