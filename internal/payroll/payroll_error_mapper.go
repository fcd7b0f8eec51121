package payroll

import (
	"errors"
	"strings"

	payrollerrors "hr-payroll/internal/payroll/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrRunNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23503: foreign_key_violation on payslips.employee_id
		if pgErr.Code == "23503" {
			return payrollerrors.ErrUnknownEmployee
		}
	}
	if strings.Contains(err.Error(), "violates foreign key constraint") {
		return payrollerrors.ErrUnknownEmployee
	}

	return err
}
