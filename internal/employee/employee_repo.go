package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// SalaryProfileUpdate is one row of a batch write-back. The payroll engine
// submits the whole run's updates in a single call so finalizing a run does
// not degrade into N round-trips.
type SalaryProfileUpdate struct {
	EmployeeID uint
	Profile    *SalaryProfile
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, emp *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id uint) (*Employee, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Employee, error)
	Update(ctx context.Context, emp *Employee) error
	UpdateSalaryProfiles(ctx context.Context, updates []SalaryProfileUpdate) error
	Delete(ctx context.Context, id uint) error
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

func (r *repository) Create(ctx context.Context, emp *Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&emps).Error
	return emps, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		First(&emp, "id = ?", id).Error
	return &emp, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []uint) ([]Employee, error) {
	var emps []Employee
	if len(ids) == 0 {
		return emps, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&emps).Error
	return emps, err
}

func (r *repository) Update(ctx context.Context, emp *Employee) error {
	return r.db.WithContext(ctx).Save(emp).Error
}

func (r *repository) UpdateSalaryProfiles(ctx context.Context, updates []SalaryProfileUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&Employee{}).
				Where("id = ?", u.EmployeeID).
				Update("salary_profile", u.Profile).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Delete(&Employee{}, "id = ?", id).Error
}
