package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Submit(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, id string, req DecideLeaveRequest) (LeaveResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger balance.Repository
	cache  balance.Cache
	rules  Rules
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger balance.Repository,
	cache balance.Cache,
	rules Rules,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if cache == nil {
		cache = balance.NewCache(nil, 0)
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		cache:  cache,
		rules:  rules.withDefaults(),
		logger: l,
	}
}

// Submit files a Pending request and debits the balance for it in one
// transaction. The employee's balance row is created on first submission.
func (s *service) Submit(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("submit leave requested",
		zap.String("emp_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	sub, err := s.rules.validateSubmission(req)
	if err != nil {
		log.Warn("submit leave validation failed", zap.String("emp_id", req.EmployeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.Internal(err)
	}
	defer tx.Rollback()

	ledger := s.ledger.WithTx(tx)
	qtx := s.repo.WithTx(tx)

	bal, created, err := ledger.GetOrCreate(ctx, sub.EmployeeID, sub.EmployeeName, s.rules.Defaults)
	if err != nil {
		log.Error("submit leave load balance failed", zap.String("emp_id", sub.EmployeeID), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !created && bal.EmployeeName != "" && !strings.EqualFold(bal.EmployeeName, sub.EmployeeName) {
		log.Warn("submit leave name mismatch", zap.String("emp_id", sub.EmployeeID))
		return LeaveResponse{}, leaveerrors.ErrNameMismatch
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, sub.EmployeeID, sub.StartDate, sub.EndDate)
	if err != nil {
		log.Error("submit leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if overlap {
		log.Warn("submit leave overlap detected",
			zap.String("emp_id", sub.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	if bal.Remaining(sub.LeaveType) < sub.Days {
		log.Warn("submit leave insufficient balance",
			zap.String("emp_id", sub.EmployeeID),
			zap.Int("requested", sub.Days),
			zap.Int("remaining", bal.Remaining(sub.LeaveType)),
		)
		return LeaveResponse{}, insufficientBalance(sub.LeaveType)
	}
	if _, err := ledger.Debit(ctx, sub.EmployeeID, sub.LeaveType, sub.Days); err != nil {
		if errors.Is(err, balanceerrors.ErrInsufficientBalance) {
			return LeaveResponse{}, insufficientBalance(sub.LeaveType)
		}
		log.Error("submit leave debit failed", zap.String("emp_id", sub.EmployeeID), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	l := &LeaveRequest{
		EmployeeID:    sub.EmployeeID,
		LeaveType:     sub.LeaveType,
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		Reason:        sub.Reason,
		Status:        StatusPending,
		SubmittedDate: sub.SubmittedDate,
	}
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	l.EmployeeName = sub.EmployeeName

	if err := tx.Commit(); err != nil {
		log.Error("submit leave commit failed", zap.Error(err))
		return LeaveResponse{}, apperror.Internal(err)
	}
	s.invalidateBalance(ctx, sub.EmployeeID)

	log.Info("submit leave success",
		zap.Int64("leave_id", l.ID),
		zap.String("emp_id", sub.EmployeeID),
		zap.Int("days", sub.Days),
	)
	return mapToResponse(*l), nil
}

// Decide moves a Pending request to Approved or Rejected. Rejection returns
// the request's days to the employee's balance.
func (s *service) Decide(ctx context.Context, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("decide leave requested", zap.String("leave_id", id), zap.String("status", req.Status))

	leaveID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || leaveID <= 0 {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}
	if req.Status != StatusApproved && req.Status != StatusRejected {
		log.Warn("decide leave invalid status", zap.String("status", req.Status))
		return LeaveResponse{}, leaveerrors.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.Internal(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	current, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		log.Error("decide leave load failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if current.Status != StatusPending {
		log.Warn("decide leave already decided",
			zap.Int64("leave_id", leaveID),
			zap.String("current_status", current.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	updated, err := qtx.UpdateStatus(ctx, leaveID, req.Status)
	if err != nil {
		log.Error("decide leave update failed", zap.Int64("leave_id", leaveID), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if req.Status == StatusRejected {
		_, err := s.ledger.WithTx(tx).Credit(ctx, current.EmployeeID, current.LeaveType, current.Days())
		if err != nil {
			log.Error("decide leave credit failed",
				zap.Int64("leave_id", leaveID),
				zap.String("emp_id", current.EmployeeID),
				zap.Error(err),
			)
			return LeaveResponse{}, mapRepositoryError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("decide leave commit failed", zap.Error(err))
		return LeaveResponse{}, apperror.Internal(err)
	}
	s.invalidateBalance(ctx, current.EmployeeID)

	log.Info("decide leave success",
		zap.Int64("leave_id", leaveID),
		zap.String("status", updated.Status),
	)
	return mapToResponse(*updated), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	if !s.rules.EmployeeIDs.Valid(employeeID) {
		return nil, balanceerrors.ErrInvalidEmployeeID.WithMessage(
			fmt.Sprintf("invalid employee id format, expected %s", s.rules.EmployeeIDs.Format()),
		)
	}

	leaves, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list employee leaves failed",
			zap.String("emp_id", employeeID),
			zap.Error(err),
		)
		return nil, apperror.Internal(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAll(ctx)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list leaves failed", zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return mapToListResponse(leaves), nil
}

func (s *service) invalidateBalance(ctx context.Context, employeeID string) {
	if err := s.cache.Invalidate(ctx, employeeID); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("balance cache invalidate failed",
			zap.String("emp_id", employeeID),
			zap.Error(err),
		)
	}
}

func insufficientBalance(t balance.LeaveType) error {
	return balanceerrors.ErrInsufficientBalance.WithMessage(fmt.Sprintf("insufficient %s balance", t))
}
