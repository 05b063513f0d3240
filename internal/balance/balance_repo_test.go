package balance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var balanceColumns = []string{"emp_id", "emp_name", "annual", "sick", "casual"}

func setupRepoTest(t *testing.T) (*sql.DB, sqlmock.Sqlmock, balance.Repository) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return db, mock, balance.NewRepository(gdb)
}

func TestBalanceRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts defaults and locks the row", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO "leave_balances" .* ON CONFLICT \("emp_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "leave_balances" WHERE emp_id = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(balanceColumns).AddRow("E1", "Jane Doe", 10, 5, 8))

		b, created, err := repo.GetOrCreate(ctx, "E1", "Jane Doe", balance.DefaultAllowance)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "Jane Doe", b.EmployeeName)
		assert.Equal(t, 10, b.Annual)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing row is returned untouched", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO "leave_balances"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "leave_balances" .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(balanceColumns).AddRow("E1", "Jane Doe", 4, 5, 8))

		b, created, err := repo.GetOrCreate(ctx, "E1", "Someone Else", balance.DefaultAllowance)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "Jane Doe", b.EmployeeName)
		assert.Equal(t, 4, b.Annual)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative insert error", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO "leave_balances"`).
			WillReturnError(errors.New("connection reset"))

		_, _, err := repo.GetOrCreate(ctx, "E1", "Jane Doe", balance.DefaultAllowance)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBalanceRepository_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("success decrements the mapped column", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE "leave_balances" SET "sick"="sick" - \$1.* WHERE emp_id = \$\d+ AND "sick" >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "leave_balances" WHERE emp_id = \$1`).
			WillReturnRows(sqlmock.NewRows(balanceColumns).AddRow("E1", "Jane Doe", 10, 3, 8))

		b, err := repo.Debit(ctx, "E1", balance.LeaveTypeSick, 2)

		require.NoError(t, err)
		assert.Equal(t, 3, b.Sick)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative guard rejects insufficient balance", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE "leave_balances" SET "annual"=`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "leave_balances" WHERE emp_id = \$1`).
			WillReturnRows(sqlmock.NewRows(balanceColumns).AddRow("E1", "Jane Doe", 2, 5, 8))

		_, err := repo.Debit(ctx, "E1", balance.LeaveTypeAnnual, 3)

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative missing employee", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE "leave_balances"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "leave_balances"`).
			WillReturnRows(sqlmock.NewRows(balanceColumns))

		_, err := repo.Debit(ctx, "E404", balance.LeaveTypeAnnual, 1)

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative unknown leave type never reaches the database", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		_, err := repo.Debit(ctx, "E1", balance.LeaveType("annual; DROP TABLE leave_balances"), 1)

		assert.ErrorIs(t, err, balanceerrors.ErrUnknownLeaveType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative non-positive days", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		_, err := repo.Debit(ctx, "E1", balance.LeaveTypeCasual, 0)

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidDays)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBalanceRepository_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("success increments without upper bound", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE "leave_balances" SET "casual"="casual" \+ \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "leave_balances" WHERE emp_id = \$1`).
			WillReturnRows(sqlmock.NewRows(balanceColumns).AddRow("E1", "Jane Doe", 10, 5, 12))

		b, err := repo.Credit(ctx, "E1", balance.LeaveTypeCasual, 4)

		require.NoError(t, err)
		assert.Equal(t, 12, b.Casual)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative missing employee", func(t *testing.T) {
		db, mock, repo := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE "leave_balances"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.Credit(ctx, "E404", balance.LeaveTypeCasual, 1)

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBalanceRepository_Find(t *testing.T) {
	db, mock, repo := setupRepoTest(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "leave_balances" WHERE emp_id = \$1`).
		WillReturnRows(sqlmock.NewRows(balanceColumns))

	_, err := repo.Find(context.Background(), "E404")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
