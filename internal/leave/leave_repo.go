package leave

import (
	"context"
	"database/sql"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/connection"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*LeaveRequest, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) withEmployeeName(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Select("leave_requests.*, leave_balances.emp_name").
		Joins("LEFT JOIN leave_balances ON leave_balances.emp_id = leave_requests.emp_id").
		Order("leave_requests.submitted_date DESC").
		Order("leave_requests.id DESC")
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.withEmployeeName(ctx).
		Where("leave_requests.emp_id = ?", employeeID).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.withEmployeeName(ctx).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status string) (*LeaveRequest, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, leaveerrors.ErrInvalidStatus
	}

	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"decided_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, leaveerrors.ErrLeaveNotFound
	}

	var l LeaveRequest
	if err := r.db.WithContext(ctx).Take(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// HasOverlappingPeriod reports whether a Pending or Approved request of the
// employee shares at least one day with [startDate, endDate].
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("emp_id = ?", employeeID).
		Where("status <> ?", StatusRejected).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}
