package payroll

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateRun(ctx context.Context, run *PayrollRun) error
	FindAllRuns(ctx context.Context, status string) ([]PayrollRun, error)
	FindRunByID(ctx context.Context, id uint) (*PayrollRun, error)
	UpdateRun(ctx context.Context, run *PayrollRun) error
	// MarkFinalized flips the run's status to FINALIZED in a single
	// conditional update and reports whether this call performed the
	// transition. Callers must gate finalize side effects on the report.
	MarkFinalized(ctx context.Context, id uint) (bool, error)
	DeleteRun(ctx context.Context, id uint) error

	CreatePayslips(ctx context.Context, payslips []Payslip) error
	ReplacePayslips(ctx context.Context, runID uint, payslips []Payslip) error
	FindPayslipsByRun(ctx context.Context, runID uint) ([]Payslip, error)
	DeletePayslipsByRun(ctx context.Context, runID uint) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) CreateRun(ctx context.Context, run *PayrollRun) error {
	return r.db.WithContext(ctx).Omit("Payslips").Create(run).Error
}

func (r *repository) FindAllRuns(ctx context.Context, status string) ([]PayrollRun, error) {
	var runs []PayrollRun
	db := r.db.WithContext(ctx).
		Preload("Payslips").
		Order("period_start DESC")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Find(&runs).Error
	return runs, err
}

func (r *repository) FindRunByID(ctx context.Context, id uint) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).
		First(&run, "id = ?", id).Error
	return &run, err
}

// UpdateRun writes period and total columns only. Status is written once at
// creation and afterwards moves solely through MarkFinalized, so a stale
// in-memory status can never overwrite a concurrent finalize.
func (r *repository) UpdateRun(ctx context.Context, run *PayrollRun) error {
	return r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"period_start": run.PeriodStart,
			"period_end":   run.PeriodEnd,
			"total_amount": run.TotalAmount,
		}).Error
}

func (r *repository) MarkFinalized(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Where("id = ? AND status <> ?", id, StatusFinalized).
		Update("status", StatusFinalized)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteRun(ctx context.Context, id uint) error {
	if err := r.DeletePayslipsByRun(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Delete(&PayrollRun{}, "id = ?", id).Error
}

func (r *repository) CreatePayslips(ctx context.Context, payslips []Payslip) error {
	if len(payslips) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(payslips, 100).Error
}

// ReplacePayslips swaps the run's whole payslip set: delete-all then
// insert-all, never per-row patches.
func (r *repository) ReplacePayslips(ctx context.Context, runID uint, payslips []Payslip) error {
	if err := r.DeletePayslipsByRun(ctx, runID); err != nil {
		return err
	}
	return r.CreatePayslips(ctx, payslips)
}

func (r *repository) FindPayslipsByRun(ctx context.Context, runID uint) ([]Payslip, error) {
	var payslips []Payslip
	err := r.db.WithContext(ctx).
		Where("payroll_run_id = ?", runID).
		Order("id ASC").
		Find(&payslips).Error
	return payslips, err
}

func (r *repository) DeletePayslipsByRun(ctx context.Context, runID uint) error {
	return r.db.WithContext(ctx).
		Delete(&Payslip{}, "payroll_run_id = ?", runID).Error
}
