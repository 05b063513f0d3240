package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/shared/connection"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Find(ctx context.Context, employeeID string) (*Balance, error)
	// GetOrCreate returns the employee's balance row locked FOR UPDATE,
	// inserting it with defaults first if needed. created reports whether
	// this call inserted the row.
	GetOrCreate(ctx context.Context, employeeID, employeeName string, defaults Defaults) (b *Balance, created bool, err error)
	Debit(ctx context.Context, employeeID string, leaveType LeaveType, days int) (*Balance, error)
	Credit(ctx context.Context, employeeID string, leaveType LeaveType, days int) (*Balance, error)
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

func (r *repository) Find(ctx context.Context, employeeID string) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Take(&b, "emp_id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetOrCreate(ctx context.Context, employeeID, employeeName string, defaults Defaults) (*Balance, bool, error) {
	// A concurrent first submission may insert the same row; ON CONFLICT
	// turns that into a no-op and the locking read below waits for it.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "emp_id"}},
			DoNothing: true,
		}).
		Create(newBalance(employeeID, employeeName, defaults))
	if res.Error != nil {
		return nil, false, res.Error
	}

	var b Balance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&b, "emp_id = ?", employeeID).Error
	if err != nil {
		return nil, false, err
	}
	return &b, res.RowsAffected == 1, nil
}

func (r *repository) Debit(ctx context.Context, employeeID string, leaveType LeaveType, days int) (*Balance, error) {
	col, err := columnFor(leaveType, days)
	if err != nil {
		return nil, err
	}

	// The >= guard makes the decrement conditional, so the counter can
	// never go below zero even if the caller skipped its own check.
	res := r.db.WithContext(ctx).
		Model(&Balance{}).
		Where("emp_id = ?", employeeID).
		Where(clause.Gte{Column: clause.Column{Name: col}, Value: days}).
		Update(col, gorm.Expr("? - ?", clause.Column{Name: col}, days))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Find(ctx, employeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, balanceerrors.ErrBalanceNotFound
			}
			return nil, err
		}
		return nil, balanceerrors.ErrInsufficientBalance
	}

	return r.Find(ctx, employeeID)
}

func (r *repository) Credit(ctx context.Context, employeeID string, leaveType LeaveType, days int) (*Balance, error) {
	col, err := columnFor(leaveType, days)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).
		Model(&Balance{}).
		Where("emp_id = ?", employeeID).
		Update(col, gorm.Expr("? + ?", clause.Column{Name: col}, days))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, balanceerrors.ErrBalanceNotFound
	}

	return r.Find(ctx, employeeID)
}

func columnFor(leaveType LeaveType, days int) (string, error) {
	col, ok := leaveType.column()
	if !ok {
		return "", balanceerrors.ErrUnknownLeaveType
	}
	if days <= 0 {
		return "", balanceerrors.ErrInvalidDays
	}
	return col, nil
}
