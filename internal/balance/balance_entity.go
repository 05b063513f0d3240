package balance

import "time"

type LeaveType string

const (
	LeaveTypeAnnual LeaveType = "Annual Leave"
	LeaveTypeSick   LeaveType = "Sick Leave"
	LeaveTypeCasual LeaveType = "Casual Leave"
)

// leaveTypeColumns is the only place a leave type becomes a column name.
// SQL for debit and credit is built from these constants, never from input.
var leaveTypeColumns = map[LeaveType]string{
	LeaveTypeAnnual: "annual",
	LeaveTypeSick:   "sick",
	LeaveTypeCasual: "casual",
}

func (t LeaveType) Valid() bool {
	_, ok := leaveTypeColumns[t]
	return ok
}

func (t LeaveType) column() (string, bool) {
	col, ok := leaveTypeColumns[t]
	return col, ok
}

// Defaults is the allowance a new employee starts with.
type Defaults struct {
	Annual int
	Sick   int
	Casual int
}

var DefaultAllowance = Defaults{Annual: 10, Sick: 5, Casual: 8}

type Balance struct {
	EmployeeID   string `gorm:"column:emp_id;type:varchar(32);primaryKey"`
	EmployeeName string `gorm:"column:emp_name;type:varchar(50);not null"`

	Annual int `gorm:"type:int;not null"`
	Sick   int `gorm:"type:int;not null"`
	Casual int `gorm:"type:int;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Balance) TableName() string {
	return "leave_balances"
}

// Remaining returns the counter for t, or 0 for an unknown type.
func (b Balance) Remaining(t LeaveType) int {
	switch t {
	case LeaveTypeAnnual:
		return b.Annual
	case LeaveTypeSick:
		return b.Sick
	case LeaveTypeCasual:
		return b.Casual
	default:
		return 0
	}
}

func newBalance(employeeID, employeeName string, d Defaults) *Balance {
	return &Balance{
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Annual:       d.Annual,
		Sick:         d.Sick,
		Casual:       d.Casual,
	}
}
