package leave

import (
	"time"

	"go-leave/internal/balance"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type LeaveRequest struct {
	ID            int64             `gorm:"primaryKey;autoIncrement"`
	EmployeeID    string            `gorm:"column:emp_id;type:varchar(32);not null;index:idx_leave_requests_emp_dates"`
	LeaveType     balance.LeaveType `gorm:"type:varchar(50);not null"`
	StartDate     time.Time         `gorm:"type:date;not null;index:idx_leave_requests_emp_dates"`
	EndDate       time.Time         `gorm:"type:date;not null;index:idx_leave_requests_emp_dates"`
	Reason        string            `gorm:"type:text;not null"`
	Status        string            `gorm:"type:varchar(20);not null;index:idx_leave_requests_status"`
	SubmittedDate time.Time         `gorm:"type:date;not null;index:idx_leave_requests_submitted"`
	DecidedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// read-only, filled by the joined list queries
	EmployeeName string `gorm:"->;column:emp_name;-:migration"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Days is the inclusive length of the request in calendar days.
func (l LeaveRequest) Days() int {
	return DaysBetween(l.StartDate, l.EndDate)
}
