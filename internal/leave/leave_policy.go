package leave

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/empid"
)

const dateLayout = "2006-01-02"

var employeeNameRe = regexp.MustCompile(`^[a-zA-Z\s.,-]{1,50}$`)

// Rules are the submission policies that vary per deployment.
type Rules struct {
	EmployeeIDs empid.Policy
	// Defaults is used as given, so a zero value grants no allowance. It must
	// match what the balance service reports for unknown employees.
	Defaults         balance.Defaults
	MaxAdvanceMonths int
	// Location decides which calendar day "today" is.
	Location *time.Location
	Now      func() time.Time
}

func DefaultRules() Rules {
	return Rules{
		EmployeeIDs:      empid.Alphanumeric(),
		Defaults:         balance.DefaultAllowance,
		MaxAdvanceMonths: 6,
		Location:         time.UTC,
		Now:              time.Now,
	}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.EmployeeIDs == nil {
		r.EmployeeIDs = d.EmployeeIDs
	}
	if r.MaxAdvanceMonths <= 0 {
		r.MaxAdvanceMonths = d.MaxAdvanceMonths
	}
	if r.Location == nil {
		r.Location = d.Location
	}
	if r.Now == nil {
		r.Now = d.Now
	}
	return r
}

// Today is the current calendar day in r.Location, as midnight UTC so it
// compares directly with parsed request dates.
func (r Rules) Today() time.Time {
	y, m, d := r.Now().In(r.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// submission is a CreateLeaveRequest that passed every stateless check.
type submission struct {
	EmployeeID    string
	EmployeeName  string
	LeaveType     balance.LeaveType
	StartDate     time.Time
	EndDate       time.Time
	SubmittedDate time.Time
	Reason        string
	Days          int
}

func (r Rules) validateSubmission(req CreateLeaveRequest) (submission, error) {
	if !r.EmployeeIDs.Valid(req.EmployeeID) {
		return submission{}, balanceerrors.ErrInvalidEmployeeID.WithMessage(
			fmt.Sprintf("invalid employee id format, expected %s", r.EmployeeIDs.Format()),
		)
	}
	name := strings.TrimSpace(req.EmployeeName)
	if !employeeNameRe.MatchString(name) {
		return submission{}, leaveerrors.ErrInvalidEmployeeName
	}
	leaveType := balance.LeaveType(req.LeaveType)
	if !leaveType.Valid() {
		return submission{}, leaveerrors.ErrInvalidLeaveType
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return submission{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return submission{}, err
	}

	today := r.Today()
	if start.Before(today) {
		return submission{}, leaveerrors.ErrPastStartDate
	}
	if end.Before(start) {
		return submission{}, leaveerrors.ErrInvalidDateRange
	}
	horizon := today.AddDate(0, r.MaxAdvanceMonths, 0)
	if start.After(horizon) || end.After(horizon) {
		return submission{}, leaveerrors.ErrDateTooFar.WithMessage(
			fmt.Sprintf("leave dates cannot be more than %d months in the future", r.MaxAdvanceMonths),
		)
	}

	submitted := today
	if req.SubmittedDate != "" {
		if submitted, err = parseDate(req.SubmittedDate); err != nil {
			return submission{}, err
		}
	}

	return submission{
		EmployeeID:    req.EmployeeID,
		EmployeeName:  name,
		LeaveType:     leaveType,
		StartDate:     start,
		EndDate:       end,
		SubmittedDate: submitted,
		Reason:        req.Reason,
		Days:          DaysBetween(start, end),
	}, nil
}

// DaysBetween counts calendar days from start to end, both inclusive.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}
