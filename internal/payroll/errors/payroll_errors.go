package payrollerrors

import (
	"net/http"

	"hr-payroll/internal/shared/apperror"
)

var (
	ErrInvalidRunID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll run id",
		http.StatusBadRequest,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before or equal period_end",
		http.StatusBadRequest,
	)
	ErrCannotReopenFinalized = apperror.New(
		apperror.CodeInvalidState,
		"a finalized payroll run cannot be reverted to draft",
		http.StatusBadRequest,
	)
	ErrUnknownEmployee = apperror.New(
		apperror.CodeInvalidInput,
		"one or more payslip items reference an unknown employee",
		http.StatusBadRequest,
	)
)
