package leave

import (
	"errors"

	balanceerrors "go-leave/internal/balance/errors"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// constraint names from internal/shared/migration
const (
	constraintRequestDates    = "chk_leave_requests_dates"
	constraintRequestEmployee = "fk_leave_requests_employee"
	constraintBalanceAnnual   = "chk_leave_balances_annual"
	constraintBalanceSick     = "chk_leave_balances_sick"
	constraintBalanceCasual   = "chk_leave_balances_casual"
)

// mapRepositoryError converts storage errors into AppErrors. Errors that are
// already AppErrors pass through; anything unrecognised becomes ErrInternal.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514":
			switch pgErr.ConstraintName {
			case constraintRequestDates:
				return leaveerrors.ErrInvalidDateRange
			case constraintBalanceAnnual, constraintBalanceSick, constraintBalanceCasual:
				return balanceerrors.ErrInsufficientBalance
			}
		case "23503":
			if pgErr.ConstraintName == constraintRequestEmployee {
				return balanceerrors.ErrBalanceNotFound
			}
		case "23505":
			return apperror.ErrConflict.WithCause(err)
		}
	}

	return apperror.Internal(err)
}
