package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"hr-payroll/internal/employee"
	"hr-payroll/internal/events"
	"hr-payroll/internal/messaging/kafka"
	payrollerrors "hr-payroll/internal/payroll/errors"
	"hr-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CalculatePreview(ctx context.Context, req CalculatePreviewRequest) ([]PreviewItemResponse, error)
	Create(ctx context.Context, actorID string, req CreateRunRequest) (RunDetailResponse, error)
	GetAll(ctx context.Context, filter GetRunsFilterRequest) ([]RunResponse, error)
	GetByID(ctx context.Context, id string) (RunDetailResponse, error)
	GetBreakdown(ctx context.Context, id string) (RunBreakdownResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateRunRequest) (RunDetailResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	outbox    kafka.OutboxRepository
	policy    PolicyConfig
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, employees employee.Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, employees, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithConfig(db, repo, employees, outboxRepo, DefaultPolicyConfig(), logger...)
}

func NewServiceWithConfig(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	outboxRepo kafka.OutboxRepository,
	policy PolicyConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		outbox:    outboxRepo,
		policy:    policy,
		logger:    l,
	}
}

// CalculatePreview computes pay for the given employees without persisting
// anything. Resigned and terminated employees are silently skipped.
func (s *service) CalculatePreview(
	ctx context.Context,
	req CalculatePreviewRequest,
) ([]PreviewItemResponse, error) {
	_, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	emps, err := s.employees.FindByIDs(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	active := s.policy.Resolve(periodEnd, req.DeductionIDs)

	items := make([]PreviewItemResponse, 0, len(emps))
	for _, emp := range emps {
		comp := Compute(emp, s.policy, active)
		if comp == nil {
			continue
		}
		items = append(items, PreviewItemResponse{
			EmployeeID:       comp.EmployeeID,
			EmployeeName:     emp.FullName,
			GrossPay:         comp.GrossPay,
			TotalAllowances:  comp.TotalAllowances,
			TotalDeductions:  comp.TotalDeductions,
			NetPay:           comp.NetPay,
			DeductionDetails: comp.DeductionDetails,
			AllowanceDetails: comp.AllowanceDetails,
		})
	}

	return items, nil
}

func (s *service) Create(
	ctx context.Context,
	actorID string,
	req CreateRunRequest,
) (RunDetailResponse, error) {
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return RunDetailResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunDetailResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run := &PayrollRun{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      status,
		TotalAmount: sumNetPay(req.Items),
		CreatedBy:   actorID,
	}

	if err := qtx.CreateRun(ctx, run); err != nil {
		return RunDetailResponse{}, mapRepositoryError(err)
	}

	payslips := payslipsFromItems(run.ID, req.Items)
	if err := qtx.CreatePayslips(ctx, payslips); err != nil {
		return RunDetailResponse{}, mapRepositoryError(err)
	}

	// A run may be created directly as FINALIZED; there is no prior
	// persisted status, so the side effects apply unconditionally.
	if status == StatusFinalized {
		if err := s.applyLoanRepayments(ctx, s.employees.WithTx(tx), payslips); err != nil {
			return RunDetailResponse{}, mapRepositoryError(err)
		}
		if err := s.enqueueFinalizedEvent(ctx, tx, run, len(payslips)); err != nil {
			return RunDetailResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return RunDetailResponse{}, err
	}

	s.logger.Info("payroll run created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.Uint("run_id", run.ID),
		zap.String("status", run.Status),
		zap.Int("payslips", len(payslips)),
	)

	return mapToDetailResponse(*run, payslips), nil
}

func (s *service) GetAll(
	ctx context.Context,
	filter GetRunsFilterRequest,
) ([]RunResponse, error) {
	runs, err := s.repo.FindAllRuns(ctx, filter.Status)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resp := make([]RunResponse, len(runs))
	for i, run := range runs {
		resp[i] = mapToRunResponse(run, len(run.Payslips))
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (RunDetailResponse, error) {
	runID, err := parseRunID(id)
	if err != nil {
		return RunDetailResponse{}, err
	}

	run, err := s.repo.FindRunByID(ctx, runID)
	if err != nil {
		return RunDetailResponse{}, mapRepositoryError(err)
	}

	payslips, err := s.repo.FindPayslipsByRun(ctx, runID)
	if err != nil {
		return RunDetailResponse{}, mapRepositoryError(err)
	}

	return mapToDetailResponse(*run, payslips), nil
}

func (s *service) GetBreakdown(ctx context.Context, id string) (RunBreakdownResponse, error) {
	runID, err := parseRunID(id)
	if err != nil {
		return RunBreakdownResponse{}, err
	}

	run, err := s.repo.FindRunByID(ctx, runID)
	if err != nil {
		return RunBreakdownResponse{}, mapRepositoryError(err)
	}

	payslips, err := s.repo.FindPayslipsByRun(ctx, runID)
	if err != nil {
		return RunBreakdownResponse{}, mapRepositoryError(err)
	}

	totals := make(map[string]float64)
	for _, p := range payslips {
		for category, amount := range p.DeductionDetails {
			// Balance snapshots are display data, not charges, and the
			// other-deductions aggregate would double-count its named
			// entries.
			if strings.HasSuffix(category, "_balance") || category == DetailOtherDeductionsSum {
				continue
			}
			totals[category] += amount
		}
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	breakdown := RunBreakdownResponse{
		RunID:       run.ID,
		Status:      run.Status,
		TotalAmount: run.TotalAmount,
		Categories:  make([]CategoryTotal, 0, len(categories)),
	}
	for _, category := range categories {
		breakdown.Categories = append(breakdown.Categories, CategoryTotal{
			Category: category,
			Label:    CategoryLabel(category),
			Total:    totals[category],
		})
	}

	return breakdown, nil
}

func (s *service) Update(
	ctx context.Context,
	actorID, id string,
	req UpdateRunRequest,
) (RunDetailResponse, error) {
	runID, err := parseRunID(id)
	if err != nil {
		return RunDetailResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunDetailResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := qtx.FindRunByID(ctx, runID)
	if err != nil {
		return RunDetailResponse{}, mapRepositoryError(err)
	}

	wasFinalized := run.Status == StatusFinalized
	if wasFinalized && req.Status != nil && *req.Status == StatusDraft {
		return RunDetailResponse{}, payrollerrors.ErrCannotReopenFinalized
	}

	if req.PeriodStart != nil {
		if run.PeriodStart, err = parseDate(*req.PeriodStart); err != nil {
			return RunDetailResponse{}, err
		}
	}
	if req.PeriodEnd != nil {
		if run.PeriodEnd, err = parseDate(*req.PeriodEnd); err != nil {
			return RunDetailResponse{}, err
		}
	}
	if run.PeriodStart.After(run.PeriodEnd) {
		return RunDetailResponse{}, payrollerrors.ErrInvalidDateRange
	}

	var payslips []Payslip
	if req.Items != nil {
		run.TotalAmount = sumNetPay(req.Items)
		payslips = payslipsFromItems(run.ID, req.Items)
		if err := qtx.ReplacePayslips(ctx, run.ID, payslips); err != nil {
			return RunDetailResponse{}, mapRepositoryError(err)
		}
		if wasFinalized {
			// Allowed for corrections, but the balances applied at
			// finalize are not recalculated, so displayed totals can
			// drift from actual loan balances.
			s.logger.Warn("payslips replaced on a finalized run",
				zap.String("request_id", contextutil.GetRequestID(ctx)),
				zap.Uint("run_id", run.ID),
				zap.String("actor_id", actorID),
			)
		}
	}

	if err := qtx.UpdateRun(ctx, run); err != nil {
		return RunDetailResponse{}, mapRepositoryError(err)
	}

	if req.Status != nil && *req.Status == StatusFinalized {
		// The conditional update is the only gate against applying loan
		// repayments twice; no prior read is trusted for this decision.
		applied, err := qtx.MarkFinalized(ctx, run.ID)
		if err != nil {
			return RunDetailResponse{}, mapRepositoryError(err)
		}
		if applied {
			if payslips == nil {
				if payslips, err = qtx.FindPayslipsByRun(ctx, run.ID); err != nil {
					return RunDetailResponse{}, mapRepositoryError(err)
				}
			}
			if err := s.applyLoanRepayments(ctx, s.employees.WithTx(tx), payslips); err != nil {
				return RunDetailResponse{}, mapRepositoryError(err)
			}
			if err := s.enqueueFinalizedEvent(ctx, tx, run, len(payslips)); err != nil {
				return RunDetailResponse{}, err
			}
			s.logger.Info("payroll run finalized",
				zap.String("request_id", contextutil.GetRequestID(ctx)),
				zap.Uint("run_id", run.ID),
				zap.String("actor_id", actorID),
			)
		}
		run.Status = StatusFinalized
	}

	if err := tx.Commit(); err != nil {
		return RunDetailResponse{}, err
	}

	if payslips == nil {
		if payslips, err = s.repo.FindPayslipsByRun(ctx, run.ID); err != nil {
			return RunDetailResponse{}, mapRepositoryError(err)
		}
	}

	return mapToDetailResponse(*run, payslips), nil
}

// Delete removes the run and all its payslips. Loan repayments already
// applied by a finalize are not reversed; compensating entries are a manual
// HR action.
func (s *service) Delete(ctx context.Context, id string) error {
	runID, err := parseRunID(id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindRunByID(ctx, runID); err != nil {
		return mapRepositoryError(err)
	}

	if err := qtx.DeleteRun(ctx, runID); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

// applyLoanRepayments subtracts each payslip's loan-category charges from
// the matching employee loan balances, floored at zero, and writes the
// profiles back in one batch. Callers gate this behind the finalize
// transition; the step itself does not re-check run status.
func (s *service) applyLoanRepayments(
	ctx context.Context,
	empRepo employee.Repository,
	payslips []Payslip,
) error {
	ids := make([]uint, 0, len(payslips))
	seen := make(map[uint]bool, len(payslips))
	for _, p := range payslips {
		if !seen[p.EmployeeID] {
			seen[p.EmployeeID] = true
			ids = append(ids, p.EmployeeID)
		}
	}

	emps, err := empRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[uint]*employee.Employee, len(emps))
	for i := range emps {
		byID[emps[i].ID] = &emps[i]
	}

	changed := make(map[uint]bool)
	for _, p := range payslips {
		emp := byID[p.EmployeeID]
		if emp == nil || emp.SalaryProfile == nil {
			continue
		}
		for _, category := range s.policy.LoanCategories {
			deducted := p.DeductionDetails[category]
			if deducted <= 0 {
				continue
			}
			loan := emp.SalaryProfile.LoanAccount(category)
			if loan == nil {
				continue
			}
			newBalance := loan.Balance.Float() - deducted
			if newBalance < 0 {
				newBalance = 0
			}
			loan.Balance = employee.Amount(newBalance)
			changed[emp.ID] = true
		}
	}

	updates := make([]employee.SalaryProfileUpdate, 0, len(changed))
	for i := range emps {
		if changed[emps[i].ID] {
			updates = append(updates, employee.SalaryProfileUpdate{
				EmployeeID: emps[i].ID,
				Profile:    emps[i].SalaryProfile,
			})
		}
	}

	return empRepo.UpdateSalaryProfiles(ctx, updates)
}

func (s *service) enqueueFinalizedEvent(
	ctx context.Context,
	tx *sql.Tx,
	run *PayrollRun,
	payslipCount int,
) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.PayrollRunFinalizedEvent{
		EventType:    "payroll.run.finalized",
		RunID:        run.ID,
		PeriodStart:  run.PeriodStart.Format(dateLayout),
		PeriodEnd:    run.PeriodEnd.Format(dateLayout),
		TotalAmount:  run.TotalAmount,
		PayslipCount: payslipCount,
		FinalizedBy:  run.CreatedBy,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_run",
		AggregateID:   strconv.FormatUint(uint64(run.ID), 10),
		EventType:     "payroll.run.finalized",
		Topic:         events.PayrollRunFinalizedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseRunID(id string) (uint, error) {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, payrollerrors.ErrInvalidRunID
	}
	return uint(v), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parsePeriod(start, end string) (time.Time, time.Time, error) {
	periodStart, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	periodEnd, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if periodStart.After(periodEnd) {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateRange
	}
	return periodStart, periodEnd, nil
}

func sumNetPay(items []PayslipItemInput) float64 {
	var total float64
	for _, item := range items {
		total += sanitize(item.NetPay)
	}
	return total
}

func payslipsFromItems(runID uint, items []PayslipItemInput) []Payslip {
	payslips := make([]Payslip, len(items))
	for i, item := range items {
		deductions := DetailMap(item.DeductionDetails)
		if deductions == nil {
			deductions = DetailMap{}
		}
		allowances := DetailMap(item.AllowanceDetails)
		if allowances == nil {
			allowances = DetailMap{}
		}
		payslips[i] = Payslip{
			PayrollRunID:     runID,
			EmployeeID:       item.EmployeeID,
			GrossPay:         sanitize(item.GrossPay),
			TotalAllowances:  sanitize(item.TotalAllowances),
			TotalDeductions:  sanitize(item.TotalDeductions),
			NetPay:           sanitize(item.NetPay),
			DaysPresent:      sanitize(item.DaysPresent),
			DoublePayDays:    sanitize(item.DoublePayDays),
			DoublePayAmount:  sanitize(item.DoublePayAmount),
			DeductionDetails: deductions,
			AllowanceDetails: allowances,
		}
	}
	return payslips
}

func mapToRunResponse(run PayrollRun, payslipCount int) RunResponse {
	return RunResponse{
		ID:           run.ID,
		PeriodStart:  run.PeriodStart.Format(dateLayout),
		PeriodEnd:    run.PeriodEnd.Format(dateLayout),
		Status:       run.Status,
		TotalAmount:  run.TotalAmount,
		PayslipCount: payslipCount,
		CreatedBy:    run.CreatedBy,
		CreatedAt:    run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:               p.ID,
		PayrollRunID:     p.PayrollRunID,
		EmployeeID:       p.EmployeeID,
		GrossPay:         p.GrossPay,
		TotalAllowances:  p.TotalAllowances,
		TotalDeductions:  p.TotalDeductions,
		NetPay:           p.NetPay,
		DaysPresent:      p.DaysPresent,
		DoublePayDays:    p.DoublePayDays,
		DoublePayAmount:  p.DoublePayAmount,
		DeductionDetails: p.DeductionDetails,
		AllowanceDetails: p.AllowanceDetails,
	}
}

func mapToDetailResponse(run PayrollRun, payslips []Payslip) RunDetailResponse {
	resp := RunDetailResponse{
		RunResponse: mapToRunResponse(run, len(payslips)),
		Payslips:    make([]PayslipResponse, len(payslips)),
	}
	for i, p := range payslips {
		resp.Payslips[i] = mapToPayslipResponse(p)
	}
	return resp
}
